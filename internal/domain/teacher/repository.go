package teacher

import (
	"context"
)

// ListFilter narrows List results. A nil IsActive matches every record.
type ListFilter struct {
	IsActive *bool
}

// Matches reports whether t passes the filter.
func (f ListFilter) Matches(t *Teacher) bool {
	return f.IsActive == nil || t.IsActive == *f.IsActive
}

// Repository defines the operations for persisting and retrieving Teacher entities.
type Repository interface {
	Create(ctx context.Context, teacher *Teacher) error // ErrDuplicateEmail if the email is taken
	GetByID(ctx context.Context, id string) (*Teacher, error)
	Update(ctx context.Context, teacher *Teacher) error // Replaces the record with the same ID; re-checks email uniqueness
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*Teacher, error) // Insertion order
}
