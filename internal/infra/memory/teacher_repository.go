// Package memory holds the default, process-local registry storage.
package memory

import (
	"context"
	"slices"
	"sync"

	"teacher_registry/internal/domain/teacher"
)

// TeacherRepository keeps teachers in insertion order. Lookups are linear scans.
type TeacherRepository struct {
	mu       sync.RWMutex
	teachers []*teacher.Teacher
}

func NewTeacherRepository() *TeacherRepository {
	return &TeacherRepository{teachers: make([]*teacher.Teacher, 0)}
}

// indexOf must be called with mu held.
func (r *TeacherRepository) indexOf(id string) int {
	for i, t := range r.teachers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// emailTaken must be called with mu held. The record at skip is ignored.
func (r *TeacherRepository) emailTaken(email string, skip int) bool {
	for i, t := range r.teachers {
		if i != skip && t.Email == email {
			return true
		}
	}
	return false
}

func (r *TeacherRepository) Create(_ context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(t.Email, -1) {
		return teacher.ErrDuplicateEmail
	}
	r.teachers = append(r.teachers, t.Clone())
	return nil
}

func (r *TeacherRepository) GetByID(_ context.Context, id string) (*teacher.Teacher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, teacher.ErrNotFound
	}
	return r.teachers[i].Clone(), nil
}

func (r *TeacherRepository) Update(_ context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(t.ID)
	if i < 0 {
		return teacher.ErrNotFound
	}
	if r.emailTaken(t.Email, i) {
		return teacher.ErrDuplicateEmail
	}
	r.teachers[i] = t.Clone()
	return nil
}

func (r *TeacherRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return teacher.ErrNotFound
	}
	r.teachers = slices.Delete(r.teachers, i, i+1)
	return nil
}

func (r *TeacherRepository) List(_ context.Context, filter teacher.ListFilter) ([]*teacher.Teacher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*teacher.Teacher, 0, len(r.teachers))
	for _, t := range r.teachers {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}
