package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"teacher_registry/internal/domain/teacher"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const deletedMessage = "Teacher deleted successfully"

// Registry is the set of operations the handlers need; app.RegistryService satisfies it.
type Registry interface {
	Create(ctx context.Context, t *teacher.Teacher) (*teacher.Teacher, error)
	List(ctx context.Context, filter teacher.ListFilter) ([]*teacher.Teacher, error)
	Get(ctx context.Context, id string) (*teacher.Teacher, error)
	Update(ctx context.Context, id string, t *teacher.Teacher) (*teacher.Teacher, error)
	Delete(ctx context.Context, id string) error
}

// teacherPayload is the request body for create and update. IsActive stays
// raw so an absent field (defaults to true) differs from an explicit null.
type teacherPayload struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Subject  string          `json:"subject"`
	Phone    *string         `json:"phone"`
	IsActive json.RawMessage `json:"is_active"`
}

func (p teacherPayload) toTeacher() (*teacher.Teacher, error) {
	t := &teacher.Teacher{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Subject:  p.Subject,
		Phone:    p.Phone,
		IsActive: true,
	}
	if len(p.IsActive) == 0 {
		return t, nil
	}
	if bytes.Equal(p.IsActive, []byte("null")) || json.Unmarshal(p.IsActive, &t.IsActive) != nil {
		return nil, teacher.NewFieldError("is_active", "type", "value must be of type bool")
	}
	return t, nil
}

// TeacherHandlers serves the /teachers resource.
type TeacherHandlers struct {
	registry Registry
	log      *logrus.Entry
}

func NewTeacherHandlers(registry Registry, baseLogger *logrus.Entry) *TeacherHandlers {
	return &TeacherHandlers{
		registry: registry,
		log:      baseLogger.WithField("component", "http"),
	}
}

func (h *TeacherHandlers) requestLog(r *http.Request, handler string) *logrus.Entry {
	return h.log.WithFields(logrus.Fields{
		"handler":    handler,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

// Create handles POST /teachers/.
func (h *TeacherHandlers) Create(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r, "create_teacher")

	var p teacherPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err, log)
		return
	}

	t, err := p.toTeacher()
	if err != nil {
		writeError(w, err, log)
		return
	}

	created, err := h.registry.Create(r.Context(), t)
	if err != nil {
		writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusCreated, created, log)
}

// List handles GET /teachers/?is_active={bool}.
func (h *TeacherHandlers) List(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r, "list_teachers")

	var filter teacher.ListFilter
	if raw, ok := r.URL.Query()["is_active"]; ok && len(raw) > 0 {
		v, valid := parseBoolQuery(raw[0])
		if !valid {
			writeError(w, teacher.NewFieldError("is_active", "bool", "value could not be parsed to a boolean"), log)
			return
		}
		filter.IsActive = &v
	}

	teachers, err := h.registry.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, teachers, log)
}

// Get handles GET /teachers/{id}.
func (h *TeacherHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := h.requestLog(r, "get_teacher").WithField("teacher_id", id)

	t, err := h.registry.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, t, log)
}

// Update handles PUT /teachers/{id}.
func (h *TeacherHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := h.requestLog(r, "update_teacher").WithField("teacher_id", id)

	var p teacherPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err, log)
		return
	}

	t, err := p.toTeacher()
	if err != nil {
		writeError(w, err, log)
		return
	}

	updated, err := h.registry.Update(r.Context(), id, t)
	if err != nil {
		writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, updated, log)
}

// Delete handles DELETE /teachers/{id}.
func (h *TeacherHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := h.requestLog(r, "delete_teacher").WithField("teacher_id", id)

	if err := h.registry.Delete(r.Context(), id); err != nil {
		writeError(w, err, log)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: deletedMessage}, log)
}
