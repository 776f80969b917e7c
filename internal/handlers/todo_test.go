package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoapp/internal/auth"
	"todoapp/internal/dto"
	"todoapp/internal/repo"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	next  int64
	users map[string]int64
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{users: map[string]int64{}}
}

func (f *fakeSessions) Create(_ context.Context, userID int64) (string, error) {
	f.next++
	id := fmt.Sprintf("sess-%d", f.next)
	f.users[id] = userID
	return id, nil
}

func (f *fakeSessions) GetUserID(_ context.Context, id string) (int64, bool) {
	userID, ok := f.users[id]
	return userID, ok
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

const testSessionTTL = 45 * time.Minute

// newTestRouter wires the handlers exactly like the app does, with
// in-memory repos and no Redis.
func newTestRouter(t *testing.T) (*gin.Engine, *fakeSessions) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := newFakeSessions()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userSvc := service.NewUserService(repo.NewMemoryUserRepo())
	todoSvc := service.NewTodoService(repo.NewMemoryTodoRepo(), nil)
	authHandler := NewAuthHandler(sessions, tokens, userSvc, testSessionTTL)
	todoHandler := NewTodoHandler(todoSvc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	protected := api.Group("", auth.RequireSession(sessions))
	protected.POST("/todos", todoHandler.Create)
	protected.GET("/todos", todoHandler.Current)
	protected.GET("/todos/completed", todoHandler.Completed)
	protected.GET("/todos/:id", todoHandler.GetByID)
	protected.PATCH("/todos/:id", todoHandler.Update)
	protected.DELETE("/todos/:id", todoHandler.Delete)
	protected.POST("/todos/:id/complete", todoHandler.Complete)

	tokenAPI := r.Group("/api/token")
	tokenAPI.POST("/auth/signup", authHandler.Signup)
	tokenAPI.POST("/auth/token", authHandler.Token)
	bearer := tokenAPI.Group("", auth.RequireToken(tokens))
	bearer.GET("/todos", todoHandler.Current)
	bearer.POST("/todos", todoHandler.Create)

	return r, sessions
}

func doJSON(t *testing.T, r *gin.Engine, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"s3cret","password_confirm":"s3cret"}`, username)
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			return c.Value
		}
	}
	t.Fatal("signup did not set a session cookie")
	return ""
}

func TestTodos_Unauthenticated(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/todos"},
		{http.MethodPost, "/api/v1/todos"},
		{http.MethodGet, "/api/v1/todos/completed"},
		{http.MethodGet, "/api/v1/todos/1"},
		{http.MethodPatch, "/api/v1/todos/1"},
		{http.MethodDelete, "/api/v1/todos/1"},
		{http.MethodPost, "/api/v1/todos/1/complete"},
	} {
		w := doJSON(t, r, route.method, route.path, "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestSignup_PasswordMismatch(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "",
		`{"username":"alice","password":"one","password_confirm":"two"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionCookie_LifetimeMatchesConfiguredTTL(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "",
		`{"username":"alice","password":"s3cret","password_confirm":"s3cret"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, int(testSessionTTL.Seconds()), cookie.MaxAge)
	require.True(t, cookie.HttpOnly)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie = nil
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, int(testSessionTTL.Seconds()), cookie.MaxAge)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	signup(t, r, "alice")
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", "",
		`{"username":"alice","password":"s3cret","password_confirm":"s3cret"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTodos_CreateValidation(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	sess := signup(t, r, "alice")

	// Binding rejects a missing title.
	w := doJSON(t, r, http.MethodPost, "/api/v1/todos", sess, `{"memo":"no title"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Service rejects an overlong title.
	long := strings.Repeat("x", 101)
	w = doJSON(t, r, http.MethodPost, "/api/v1/todos", sess,
		fmt.Sprintf(`{"title":%q}`, long))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTodos_SessionLifecycle(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	sess := signup(t, r, "alice")

	// Create.
	w := doJSON(t, r, http.MethodPost, "/api/v1/todos", sess,
		`{"title":"Buy milk","memo":"2 liters","important":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "Buy milk", created.Title)
	require.Nil(t, created.DateCompleted)

	// Listed as current, not as completed.
	w = doJSON(t, r, http.MethodGet, "/api/v1/todos", sess, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ListTodosResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)

	w = doJSON(t, r, http.MethodGet, "/api/v1/todos/completed", sess, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Empty(t, list.Items)

	// Patch.
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/todos/%d", created.ID), sess,
		`{"important":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	var patched dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patched))
	require.Equal(t, "Buy milk", patched.Title)
	require.False(t, patched.Important)

	// Complete twice; the timestamp does not move.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/todos/%d/complete", created.ID), sess, "")
	require.Equal(t, http.StatusOK, w.Code)
	var done dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	require.NotNil(t, done.DateCompleted)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/todos/%d/complete", created.ID), sess, "")
	require.Equal(t, http.StatusOK, w.Code)
	var again dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	require.NotNil(t, again.DateCompleted)
	require.True(t, done.DateCompleted.Equal(*again.DateCompleted))

	// Moved from current to completed.
	w = doJSON(t, r, http.MethodGet, "/api/v1/todos", sess, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Empty(t, list.Items)
	w = doJSON(t, r, http.MethodGet, "/api/v1/todos/completed", sess, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)

	// Delete is final.
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/todos/%d", created.ID), sess, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/todos/%d", created.ID), sess, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodos_ForeignTodoIsNotFound(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	aliceSess := signup(t, r, "alice")
	bobSess := signup(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/v1/todos", aliceSess, `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Bob sees alice's todo as missing, not as forbidden.
	path := fmt.Sprintf("/api/v1/todos/%d", created.ID)
	for _, route := range []struct{ method, path, body string }{
		{http.MethodGet, path, ""},
		{http.MethodPatch, path, `{"title":"stolen"}`},
		{http.MethodDelete, path, ""},
		{http.MethodPost, path + "/complete", ""},
	} {
		w := doJSON(t, r, route.method, route.path, bobSess, route.body)
		require.Equal(t, http.StatusNotFound, w.Code, "%s %s", route.method, route.path)
	}
}

func TestTodos_TokenSurface(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/token/auth/signup", "",
		`{"username":"alice","password":"s3cret","password_confirm":"s3cret"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/token/auth/token", "",
		`{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var tok dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/token/todos",
		bytes.NewReader([]byte(`{"title":"Buy milk"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same store behind both surfaces: the todo shows up on a session list.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "",
		`{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sess string
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			sess = c.Value
		}
	}
	require.NotEmpty(t, sess)
	w = doJSON(t, r, http.MethodGet, "/api/v1/todos", sess, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ListTodosResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
}

func TestTodos_InvalidID(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	sess := signup(t, r, "alice")

	for _, path := range []string{"/api/v1/todos/abc", "/api/v1/todos/0", "/api/v1/todos/-1"} {
		w := doJSON(t, r, http.MethodGet, path, sess, "")
		require.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}
