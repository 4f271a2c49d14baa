package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koji-portfolio/portfolio-backend/internal/auth"
	authmw "github.com/koji-portfolio/portfolio-backend/internal/auth/middleware"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/repository"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/service"
)

const testToken = "test-admin-token"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "projects.json"))
	h := New(service.NewProjectService(store))

	r := gin.New()
	api := r.Group("/api")
	h.RegisterPublic(api)
	admin := api.Group("/admin")
	admin.Use(authmw.RequireAdmin(auth.NewSharedSecretGate(testToken)))
	h.RegisterAdmin(admin)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string, authed bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func listProjects(t *testing.T, r *gin.Engine) []domain.Project {
	t.Helper()
	w, env := do(t, r, http.MethodGet, "/api/projects", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var data projectsData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Projects
}

func TestList_EmptyStore(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/projects", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"projects":[]}`, string(env.Data))
}

func TestCreate_AssignsIDAndIsListed(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Demo"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var created domain.Project
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.GreaterOrEqual(t, created.ID, int64(1))
	assert.Equal(t, "Demo", created.Title)

	projects := listProjects(t, r)
	require.Len(t, projects, 1)
	assert.Equal(t, created.ID, projects[0].ID)
}

func TestCreate_RequiresTitle(t *testing.T) {
	r := newTestRouter(t)

	for _, body := range []string{`{}`, `{"title":"   "}`} {
		w, env := do(t, r, http.MethodPost, "/api/admin/project", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.False(t, env.Success)
		assert.Equal(t, msgTitleRequired, env.Message)
	}
	assert.Empty(t, listProjects(t, r))
}

func TestCreate_MalformedBody(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/admin/project", `{"title":`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgBadBody, env.Message)
}

func TestUpdate_MergesSuppliedFields(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Demo","description":"old","featured":true}`, true)

	w, env := do(t, r, http.MethodPut, "/api/admin/project/1", `{"description":"new"}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var updated domain.Project
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "Demo", updated.Title)
	assert.Equal(t, "new", updated.Description)
	assert.True(t, updated.Featured)
}

func TestUpdate_IgnoresBodyID(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Demo"}`, true)

	w, env := do(t, r, http.MethodPut, "/api/admin/project/1", `{"id":42,"title":"Renamed"}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	var updated domain.Project
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdate_RejectsBlankTitle(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Demo"}`, true)

	w, env := do(t, r, http.MethodPut, "/api/admin/project/1", `{"title":""}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgTitleRequired, env.Message)

	projects := listProjects(t, r)
	require.Len(t, projects, 1)
	assert.Equal(t, "Demo", projects[0].Title)
}

func TestUpdate_UnknownIDIsNotFound(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/admin/project/999", "/api/admin/project/abc", "/api/admin/project/0"} {
		w, env := do(t, r, http.MethodPut, path, `{"title":"x"}`, true)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, msgNotFound, env.Message)
	}
}

func TestDelete_ReturnsRemovedProject(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"A"}`, true)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"B"}`, true)

	w, env := do(t, r, http.MethodDelete, "/api/admin/project/1", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var deleted domain.Project
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, "A", deleted.Title)

	projects := listProjects(t, r)
	require.Len(t, projects, 1)
	assert.Equal(t, "B", projects[0].Title)

	w, _ = do(t, r, http.MethodDelete, "/api/admin/project/1", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete_WithoutAuthLeavesCollection(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Keep"}`, true)

	w, env := do(t, r, http.MethodDelete, "/api/admin/project/1", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	assert.Len(t, listProjects(t, r), 1)
}

func TestReplace_AcceptsArrayAndObject(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPut, "/api/admin/projects", `[{"id":7,"title":"Seven"},{"title":"Next"}]`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgReplaced, env.Message)

	projects := listProjects(t, r)
	require.Len(t, projects, 2)
	assert.Equal(t, int64(7), projects[0].ID)
	assert.Equal(t, int64(8), projects[1].ID)

	w, _ = do(t, r, http.MethodPut, "/api/admin/projects", `{"projects":[{"title":"Only"}]}`, true)
	require.Equal(t, http.StatusOK, w.Code)

	projects = listProjects(t, r)
	require.Len(t, projects, 1)
	assert.Equal(t, "Only", projects[0].Title)
}

func TestReplace_RejectsNonArray(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Keep"}`, true)

	for _, body := range []string{`{"projects":"nope"}`, `{"other":[]}`, `"text"`, ``} {
		w, env := do(t, r, http.MethodPut, "/api/admin/projects", body, true)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, msgNotArray, env.Message, body)
	}
	assert.Len(t, listProjects(t, r), 1)
}

func TestReplace_RejectsUntitledEntry(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Keep"}`, true)

	w, env := do(t, r, http.MethodPut, "/api/admin/projects", `[{"title":"ok"},{"description":"no title"}]`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgTitleRequired, env.Message)

	projects := listProjects(t, r)
	require.Len(t, projects, 1)
	assert.Equal(t, "Keep", projects[0].Title)
}

func TestReplace_EmptyArrayClears(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/admin/project", `{"title":"Gone"}`, true)

	w, _ := do(t, r, http.MethodPut, "/api/admin/projects", `[]`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listProjects(t, r))
}
