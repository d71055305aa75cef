package app

import (
	"context"
	"errors"
	"fmt"

	"teacher_registry/internal/domain/teacher"
	"teacher_registry/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Summary counts the records currently held by the registry.
type Summary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// RegistryService implements the create/list/get/update/delete operations
// over a teacher.Repository.
type RegistryService struct {
	teacherRepo teacher.Repository
	log         *logrus.Entry
	newID       func() string
}

func NewRegistryService(tr teacher.Repository, baseLogger *logrus.Entry) *RegistryService {
	return &RegistryService{
		teacherRepo: tr,
		log:         baseLogger.WithField("component", "registry"),
		newID:       uuid.NewString,
	}
}

// Create validates t, assigns it a fresh ID and stores it.
// Any ID already set on t is discarded. The email domain is stored lowercased.
func (s *RegistryService) Create(ctx context.Context, t *teacher.Teacher) (*teacher.Teacher, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	newTeacher := t.Clone()
	newTeacher.ID = s.newID()
	newTeacher.Email = teacher.NormalizeEmail(newTeacher.Email)

	if err := s.teacherRepo.Create(ctx, newTeacher); err != nil {
		if errors.Is(err, teacher.ErrDuplicateEmail) {
			s.log.WithField("email", logger.RedactEmail(t.Email)).Warn("Rejected teacher with duplicate email")
			return nil, teacher.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create teacher in repository: %w", err)
	}

	s.log.WithField("teacher_id", newTeacher.ID).Info("Teacher created")
	return newTeacher, nil
}

// List returns every stored teacher, or only those matching filter.IsActive.
func (s *RegistryService) List(ctx context.Context, filter teacher.ListFilter) ([]*teacher.Teacher, error) {
	teachers, err := s.teacherRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

func (s *RegistryService) Get(ctx context.Context, id string) (*teacher.Teacher, error) {
	t, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, teacher.ErrNotFound) {
			return nil, teacher.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get teacher %s: %w", id, err)
	}
	return t, nil
}

// Update replaces the whole record stored under id. The path id wins: a
// payload carrying a different non-empty ID is rejected. Email uniqueness is
// checked against every other record.
func (s *RegistryService) Update(ctx context.Context, id string, t *teacher.Teacher) (*teacher.Teacher, error) {
	if t.ID != "" && t.ID != id {
		return nil, teacher.NewFieldError("id", "eq_path", teacher.ErrIDMismatch.Error())
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	replacement := t.Clone()
	replacement.ID = id
	replacement.Email = teacher.NormalizeEmail(replacement.Email)

	if err := s.teacherRepo.Update(ctx, replacement); err != nil {
		switch {
		case errors.Is(err, teacher.ErrNotFound):
			return nil, teacher.ErrNotFound
		case errors.Is(err, teacher.ErrDuplicateEmail):
			s.log.WithFields(logrus.Fields{
				"teacher_id": id,
				"email":      logger.RedactEmail(t.Email),
			}).Warn("Rejected update with duplicate email")
			return nil, teacher.ErrDuplicateEmail
		default:
			return nil, fmt.Errorf("failed to update teacher %s: %w", id, err)
		}
	}

	s.log.WithField("teacher_id", id).Info("Teacher updated")
	return replacement, nil
}

func (s *RegistryService) Delete(ctx context.Context, id string) error {
	if err := s.teacherRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, teacher.ErrNotFound) {
			return teacher.ErrNotFound
		}
		return fmt.Errorf("failed to delete teacher %s: %w", id, err)
	}
	s.log.WithField("teacher_id", id).Info("Teacher deleted")
	return nil
}

// Summary counts active and inactive teachers.
func (s *RegistryService) Summary(ctx context.Context) (Summary, error) {
	all, err := s.teacherRepo.List(ctx, teacher.ListFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list teachers for summary: %w", err)
	}
	sum := Summary{Total: len(all)}
	for _, t := range all {
		if t.IsActive {
			sum.Active++
		}
	}
	sum.Inactive = sum.Total - sum.Active
	return sum, nil
}
