package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitolite-sync/internal/core"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/database/dbtest"
	"gitolite-sync/internal/pkg/gitolite/gitolitetest"
	"gitolite-sync/internal/pkg/jwt"
	"gitolite-sync/internal/pkg/storage"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
	pkgErrors "gitolite-sync/pkg/errors"
)

type response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	store  *gitolitetest.MemoryStore
	token  string
}

func newServer(t *testing.T, secret string) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	store := gitolitetest.NewMemoryStore()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Auth:     config.AuthConfig{JWT: config.JWTConfig{Secret: secret}},
		Gitolite: config.GitoliteConfig{StorageRoot: "/data/repos", RepoSuffix: ".git"},
	}
	engine := core.NewCoreEngine(db, store, storage.NewFSMover(afero.NewMemMapFs(), zap.NewNop()), cfg.Gitolite, zap.NewNop())

	s := &server{t: t, engine: Setup(cfg, db, engine, zap.NewNop()), store: store}
	if secret != "" {
		token, err := jwt.GenerateAccessToken(cfg.Auth.JWT, "test")
		require.NoError(t, err)
		s.token = token
	}

	project := &model.Project{Identifier: "proj", Name: "proj", Status: constants.ProjectStatusActive}
	require.NoError(t, repository.NewProjectRepository(db).Create(project))
	require.NoError(t, repository.NewRepositoryRepository(db).Create(&model.Repository{
		ProjectID: project.ID, Type: constants.RepositoryTypeGitolite, URL: "/data/repos/proj.git", RootURL: "/data/repos/proj.git",
	}))
	return s
}

func (s *server) do(method, path string, body any) response {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(s.t, http.StatusOK, w.Code)

	var resp response
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newServer(t, "s3cret")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSwaggerUI(t *testing.T) {
	s := newServer(t, "s3cret")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger")
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t, "s3cret")

	s.token = ""
	resp := s.do(http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, pkgErrors.CodeUnauthorized, resp.Code)

	s.token = "garbage"
	resp = s.do(http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, pkgErrors.CodeUnauthorized, resp.Code)
}

func TestEmptySecretRejectsEverything(t *testing.T) {
	s := newServer(t, "")

	resp := s.do(http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, pkgErrors.CodeUnauthorized, resp.Code)

	resp = s.do(http.MethodPost, "/api/v1/admin/dispatch", map[string]any{"op": "update_all_projects"})
	assert.Equal(t, pkgErrors.CodeUnauthorized, resp.Code)
	assert.Empty(t, s.store.Commits())

	// token 用空 secret 签名也不能通过
	token, err := jwt.GenerateAccessToken(config.JWTConfig{}, "test")
	require.NoError(t, err)
	s.token = token
	resp = s.do(http.MethodDelete, "/api/v1/users/1", nil)
	assert.Equal(t, pkgErrors.CodeUnauthorized, resp.Code)
}

func TestUserAndSettingsFlow(t *testing.T) {
	s := newServer(t, "s3cret")

	resp := s.do(http.MethodPost, "/api/v1/users", map[string]any{"login": "alice"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var user struct {
		ID                 int64  `json:"id"`
		GitoliteIdentifier string `json:"gitolite_identifier"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.Equal(t, "alice_1", user.GitoliteIdentifier)

	resp = s.do(http.MethodPost, "/api/v1/users", map[string]any{"login": "alice"})
	assert.Equal(t, pkgErrors.CodeConflict, resp.Code)

	resp = s.do(http.MethodPost, "/api/v1/users/1/keys", map[string]any{"title": "laptop", "key": "bogus"})
	assert.Equal(t, pkgErrors.CodeValidationError, resp.Code)

	resp = s.do(http.MethodPost, "/api/v1/users/1/keys", map[string]any{"title": "laptop"})
	assert.Equal(t, pkgErrors.CodeBadRequest, resp.Code)
	assert.NotEmpty(t, resp.Detail)

	resp = s.do(http.MethodPut, "/api/v1/settings", map[string]any{"values": map[string]string{
		model.SettingServerPort:       "99999",
		model.SettingSSHServerDomain:  " git.example.com/path ",
		model.SettingResyncAllSSHKeys: "true",
	}})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var settings struct {
		Values map[string]string `json:"values"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &settings))
	assert.Equal(t, "", settings.Values[model.SettingServerPort])
	assert.Equal(t, "git.example.com", settings.Values[model.SettingSSHServerDomain])
	assert.Equal(t, "false", settings.Values[model.SettingResyncAllSSHKeys])

	resp = s.do(http.MethodGet, "/api/v1/users/99", nil)
	assert.Equal(t, pkgErrors.CodeNotFound, resp.Code)

	resp = s.do(http.MethodDelete, "/api/v1/users/1", nil)
	assert.Equal(t, pkgErrors.CodeSuccess, resp.Code)
}

func TestPostReceiveURLRoutes(t *testing.T) {
	s := newServer(t, "s3cret")

	resp := s.do(http.MethodPost, "/api/v1/projects/1/repository/post_receive_urls", map[string]any{"url": "https://ci.example.com/hook"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	resp = s.do(http.MethodPut, "/api/v1/projects/1/repository/post_receive_urls/1/toggle", nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	assert.Equal(t, "回调地址已禁用", resp.Message)

	resp = s.do(http.MethodGet, "/api/v1/projects/1/repository/post_receive_urls/2", nil)
	assert.Equal(t, pkgErrors.CodeNotFound, resp.Code)

	resp = s.do(http.MethodGet, "/api/v1/projects/2/repository/post_receive_urls", nil)
	assert.Equal(t, pkgErrors.CodeNotFound, resp.Code)
}

func TestDispatchRoute(t *testing.T) {
	s := newServer(t, "s3cret")

	resp := s.do(http.MethodPost, "/api/v1/admin/dispatch", map[string]any{"op": "update_all_projects"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	require.Len(t, s.store.Commits(), 1)
	assert.Equal(t, "Updated all projects (1)", s.store.Commits()[0].Message)

	resp = s.do(http.MethodPost, "/api/v1/admin/dispatch", map[string]any{"op": "rm -rf"})
	assert.Equal(t, pkgErrors.CodeBadRequest, resp.Code)
}
