package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilm-dev/vidtube/auth"
	"github.com/sahilm-dev/vidtube/controllers"
	"github.com/sahilm-dev/vidtube/dto"
	"github.com/sahilm-dev/vidtube/middleware"
	"github.com/sahilm-dev/vidtube/repositories/users"
	"github.com/sahilm-dev/vidtube/services"
)

type fakeMedia struct{ uploads int }

func (f *fakeMedia) UploadImage(_ context.Context, folder string, _ *multipart.FileHeader) (string, error) {
	f.uploads++
	return fmt.Sprintf("https://cdn.example.com/%s/%d", folder, f.uploads), nil
}

func (f *fakeMedia) DeleteImageByURL(context.Context, string) error { return nil }

func newTestServer(t *testing.T) (*gin.Engine, *services.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenManager(auth.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	repo := users.NewMemoryRepository()
	svc := services.NewUserService(repo, tokens, &fakeMedia{})

	r := gin.New()
	r.POST("/api/v1/users/login", controllers.Login(svc))
	r.POST("/api/v1/users/refresh-token", controllers.Refresh(svc))
	r.POST("/api/v1/users/logout", middleware.AuthMiddleware(tokens), controllers.Logout(svc))

	_, err = svc.Register(context.Background(), dto.RegisterUserDTO{
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-pw",
	}, &multipart.FileHeader{Filename: "avatar.png"}, nil)
	require.NoError(t, err)

	return r, svc
}

func doLogin(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"username": username, "password": password})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func cookieValue(t *testing.T, w *httptest.ResponseRecorder, name string) string {
	t.Helper()
	res := w.Result()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	w := doLogin(t, r, "alice", "correct-pw")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		User         map[string]any `json:"user"`
		AccessToken  string         `json:"accessToken"`
		RefreshToken string         `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.NotEmpty(t, body.RefreshToken)
	assert.Equal(t, "alice", body.User["username"])

	// secrets never leave the server
	assert.NotContains(t, body.User, "passwordHash")
	assert.NotContains(t, body.User, "refreshToken")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// both tokens land in HTTP-only cookies
	res := w.Result()
	foundAccess, foundRefresh := false, false
	for _, c := range res.Cookies() {
		switch c.Name {
		case "accessToken":
			foundAccess = true
			assert.True(t, c.HttpOnly)
		case "refreshToken":
			foundRefresh = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, foundAccess)
	assert.True(t, foundRefresh)
}

func TestLoginEndpointRejections(t *testing.T) {
	r, _ := newTestServer(t)

	w := doLogin(t, r, "", "correct-pw")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doLogin(t, r, "nobody", "correct-pw")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doLogin(t, r, "alice", "wrong-pw")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpointRotation(t *testing.T) {
	r, _ := newTestServer(t)

	login := doLogin(t, r, "alice", "correct-pw")
	require.Equal(t, http.StatusOK, login.Code)
	r1 := cookieValue(t, login, "refreshToken")
	require.NotEmpty(t, r1)

	// rotate via cookie
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: r1})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	r2 := cookieValue(t, w, "refreshToken")
	require.NotEmpty(t, r2)
	assert.NotEqual(t, r1, r2)

	// replaying the superseded token fails
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: r1})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshEndpointBodyFallback(t *testing.T) {
	r, _ := newTestServer(t)

	login := doLogin(t, r, "alice", "correct-pw")
	r1 := cookieValue(t, login, "refreshToken")

	body, err := json.Marshal(gin.H{"refreshToken": r1})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshEndpointMissingToken(t *testing.T) {
	r, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	login := doLogin(t, r, "alice", "correct-pw")
	access := cookieValue(t, login, "accessToken")
	refresh := cookieValue(t, login, "refreshToken")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// the last-issued refresh token no longer rotates
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
