package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"teacher_registry/internal/app"
	"teacher_registry/internal/domain/teacher"
	"teacher_registry/internal/infra/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	l, _ := test.NewNullLogger()
	base := logrus.NewEntry(l)
	svc := app.NewRegistryService(memory.NewTeacherRepository(), base)
	return NewRouter(NewTeacherHandlers(svc, base), RouterOptions{}, base)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTeacher(t *testing.T, rec *httptest.ResponseRecorder) teacher.Teacher {
	t.Helper()
	var out teacher.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestTeachersAPI_EndToEnd(t *testing.T) {
	h := setupRouter(t)

	rec := do(t, h, http.MethodPost, "/teachers/", `{"name":"Jane Doe","email":"jane@x.com","subject":"Math"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	created := decodeTeacher(t, rec)
	_, err := uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.Phone)

	rec = do(t, h, http.MethodPost, "/teachers/", `{"name":"Jane Again","email":"jane@x.com","subject":"Art"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeDuplicateEmail, decodeError(t, rec).Code)

	rec = do(t, h, http.MethodGet, "/teachers/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Teacher not found", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodPut, "/teachers/"+created.ID,
		`{"name":"Jane Doe","email":"jane@x.com","subject":"Physics"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeTeacher(t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Physics", updated.Subject)

	rec = do(t, h, http.MethodDelete, "/teachers/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Teacher deleted successfully"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/teachers/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeachersAPI_CreateIgnoresCallerID(t *testing.T) {
	h := setupRouter(t)

	rec := do(t, h, http.MethodPost, "/teachers", `{"id":"mine","name":"A","email":"a@x.com","subject":"Math","phone":"123","is_active":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeTeacher(t, rec)
	assert.NotEqual(t, "mine", created.ID)
	assert.False(t, created.IsActive)
	require.NotNil(t, created.Phone)
	assert.Equal(t, "123", *created.Phone)
}

func TestTeachersAPI_ValidationErrors(t *testing.T) {
	h := setupRouter(t)

	cases := map[string]struct {
		body  string
		field string
		rule  string
	}{
		"bad email":        {`{"name":"A","email":"nope","subject":"Math"}`, "email", "email"},
		"missing name":     {`{"email":"a@x.com","subject":"Math"}`, "name", "required"},
		"long subject":     {`{"name":"A","email":"a@x.com","subject":"` + strings.Repeat("s", 51) + `"}`, "subject", "max"},
		"long phone":       {`{"name":"A","email":"a@x.com","subject":"Math","phone":"1234567890123456"}`, "phone", "max"},
		"wrong type":       {`{"name":"A","email":"a@x.com","subject":"Math","is_active":"maybe"}`, "is_active", "type"},
		"name is a number": {`{"name":5,"email":"a@x.com","subject":"Math"}`, "name", "type"},
		"null is_active":   {`{"name":"A","email":"a@x.com","subject":"Math","is_active":null}`, "is_active", "type"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/teachers/", tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var body struct {
				Code    string               `json:"code"`
				Details []teacher.FieldError `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, CodeValidation, body.Code)
			require.NotEmpty(t, body.Details)
			assert.Equal(t, tc.field, body.Details[0].Field)
			assert.Equal(t, tc.rule, body.Details[0].Rule)
		})
	}

	rec := do(t, h, http.MethodGet, "/teachers/", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTeachersAPI_InvalidJSON(t *testing.T) {
	h := setupRouter(t)

	for _, body := range []string{"", "{", `{"name":"A"} {"name":"B"}`} {
		rec := do(t, h, http.MethodPost, "/teachers/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, CodeInvalidJSON, decodeError(t, rec).Code, body)
	}
}

func TestTeachersAPI_ListFilter(t *testing.T) {
	h := setupRouter(t)
	for i, active := range []bool{true, false, true} {
		body, _ := json.Marshal(map[string]any{
			"name": "T", "email": string(rune('a'+i)) + "@x.com", "subject": "Math", "is_active": active,
		})
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/teachers/", string(body)).Code)
	}

	list := func(query string) []teacher.Teacher {
		rec := do(t, h, http.MethodGet, "/teachers/"+query, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var out []teacher.Teacher
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	all := list("")
	on := list("?is_active=true")
	off := list("?is_active=0")
	assert.Len(t, all, 3)
	assert.Len(t, on, 2)
	assert.Len(t, off, 1)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, []string{all[0].Email, all[1].Email, all[2].Email})
	assert.Len(t, list("?is_active=YES"), 2)

	rec := do(t, h, http.MethodGet, "/teachers/?is_active=perhaps", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTeachersAPI_UpdateRules(t *testing.T) {
	h := setupRouter(t)
	a := decodeTeacher(t, do(t, h, http.MethodPost, "/teachers/", `{"name":"A","email":"a@x.com","subject":"Math"}`))
	b := decodeTeacher(t, do(t, h, http.MethodPost, "/teachers/", `{"name":"B","email":"b@x.com","subject":"Art","is_active":false}`))

	rec := do(t, h, http.MethodPut, "/teachers/"+uuid.NewString(), `{"name":"X","email":"x@x.com","subject":"Math"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/teachers/"+b.ID, `{"name":"B","email":"a@x.com","subject":"Art"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeDuplicateEmail, decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPut, "/teachers/"+b.ID, `{"id":"`+a.ID+`","name":"B","email":"b@x.com","subject":"Art"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Wholesale replacement: an omitted is_active falls back to true.
	rec = do(t, h, http.MethodPut, "/teachers/"+b.ID, `{"id":"`+b.ID+`","name":"B2","email":"b2@x.com","subject":"Art"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeTeacher(t, do(t, h, http.MethodGet, "/teachers/"+b.ID, ""))
	assert.Equal(t, "B2", got.Name)
	assert.True(t, got.IsActive)

	rec = do(t, h, http.MethodPut, "/teachers/"+b.ID, `{"name":"B2","email":"b2@x.com","subject":"Art","is_active":null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTeachersAPI_EmailDomainIsCaseInsensitive(t *testing.T) {
	h := setupRouter(t)

	rec := do(t, h, http.MethodPost, "/teachers/", `{"name":"Jane","email":"jane@x.com","subject":"Math"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/teachers/", `{"name":"Jane","email":"jane@X.COM","subject":"Math"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeDuplicateEmail, decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/teachers/", `{"name":"Ann","email":"Ann@School.ORG","subject":"Art"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ann@school.org", decodeTeacher(t, rec).Email)
}

func TestTeachersAPI_DeleteUnknown(t *testing.T) {
	h := setupRouter(t)
	rec := do(t, h, http.MethodDelete, "/teachers/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	h := setupRouter(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

type failingRegistry struct{}

var errStorage = errors.New("storage offline")

func (failingRegistry) Create(context.Context, *teacher.Teacher) (*teacher.Teacher, error) {
	return nil, errStorage
}
func (failingRegistry) List(context.Context, teacher.ListFilter) ([]*teacher.Teacher, error) {
	return nil, errStorage
}
func (failingRegistry) Get(context.Context, string) (*teacher.Teacher, error) { return nil, errStorage }
func (failingRegistry) Update(context.Context, string, *teacher.Teacher) (*teacher.Teacher, error) {
	return nil, errStorage
}
func (failingRegistry) Delete(context.Context, string) error { return errStorage }

func TestTeachersAPI_InternalErrorsAreHidden(t *testing.T) {
	l, hook := test.NewNullLogger()
	base := logrus.NewEntry(l)
	h := NewRouter(NewTeacherHandlers(failingRegistry{}, base), RouterOptions{}, base)

	rec := do(t, h, http.MethodGet, "/teachers/", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, CodeInternal, resp.Code)
	assert.NotContains(t, rec.Body.String(), "storage offline")

	var sawCause bool
	for _, e := range hook.AllEntries() {
		if e.Data[logrus.ErrorKey] == errStorage {
			sawCause = true
		}
	}
	assert.True(t, sawCause)
}

func TestCORSPreflight(t *testing.T) {
	l, _ := test.NewNullLogger()
	base := logrus.NewEntry(l)
	svc := app.NewRegistryService(memory.NewTeacherRepository(), base)
	h := NewRouter(NewTeacherHandlers(svc, base), RouterOptions{AllowedOrigins: []string{"https://school.example"}}, base)

	req := httptest.NewRequest(http.MethodOptions, "/teachers/", nil)
	req.Header.Set("Origin", "https://school.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://school.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
