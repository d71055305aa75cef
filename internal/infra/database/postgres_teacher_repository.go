package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"teacher_registry/internal/domain/teacher"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const selectTeacher = `SELECT id, name, email, subject, phone, is_active FROM teachers`

type PostgresTeacherRepository struct {
	db *sql.DB
}

func NewPostgresTeacherRepository(db *sql.DB) *PostgresTeacherRepository {
	return &PostgresTeacherRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullablePhone(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeacher(row rowScanner) (*teacher.Teacher, error) {
	t := &teacher.Teacher{}
	var phone sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Subject, &phone, &t.IsActive); err != nil {
		return nil, err
	}
	if phone.Valid {
		t.Phone = &phone.String
	}
	return t, nil
}

func (r *PostgresTeacherRepository) Create(ctx context.Context, t *teacher.Teacher) error {
	query := `INSERT INTO teachers (id, name, email, subject, phone, is_active)
               VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Email, t.Subject, nullablePhone(t.Phone), t.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.ErrDuplicateEmail
		}
		return fmt.Errorf("error creating teacher: %w", err)
	}
	return nil
}

func (r *PostgresTeacherRepository) GetByID(ctx context.Context, id string) (*teacher.Teacher, error) {
	t, err := scanTeacher(r.db.QueryRowContext(ctx, selectTeacher+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, teacher.ErrNotFound
		}
		return nil, fmt.Errorf("error getting teacher by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTeacherRepository) Update(ctx context.Context, t *teacher.Teacher) error {
	query := `UPDATE teachers
               SET name = $1, email = $2, subject = $3, phone = $4, is_active = $5
               WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query, t.Name, t.Email, t.Subject, nullablePhone(t.Phone), t.IsActive, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.ErrDuplicateEmail
		}
		return fmt.Errorf("error updating teacher: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows on update: %w", err)
	}
	if n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}

func (r *PostgresTeacherRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting teacher: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows on delete: %w", err)
	}
	if n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}

func (r *PostgresTeacherRepository) List(ctx context.Context, filter teacher.ListFilter) ([]*teacher.Teacher, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if filter.IsActive != nil {
		rows, err = r.db.QueryContext(ctx, selectTeacher+` WHERE is_active = $1 ORDER BY seq`, *filter.IsActive)
	} else {
		rows, err = r.db.QueryContext(ctx, selectTeacher+` ORDER BY seq`)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*teacher.Teacher, 0)
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teachers: %w", err)
	}
	return teachers, nil
}
