package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubHasher struct{}

func (stubHasher) Hash(p []byte) ([]byte, error) { return []byte("hashed-" + string(p)), nil }

func (stubHasher) Compare(hash, p []byte) error {
	if string(hash) != "hashed-"+string(p) {
		return errors.New("mismatch")
	}
	return nil
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, msg ShopMail) error {
	return m.Called(ctx, msg).Error(0)
}

type testServer struct {
	router   *gin.Engine
	stores   *Stores
	tokens   *TokenService
	auth     *AuthHandler
	notifier *mockNotifier
	clock    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		stores:   NewMemoryStores(),
		notifier: &mockNotifier{},
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	ts.tokens = NewTokenService([]byte("test-secret"), time.Hour, 14*24*time.Hour)
	ts.tokens.now = func() time.Time { return ts.clock }
	ts.auth = NewAuthHandler(ts.stores.Users, ts.tokens, stubHasher{})
	ts.router = NewRouter(RouterDeps{
		Auth:       ts.auth,
		Registries: NewRegistries(ts.stores),
		Notifier:   ts.notifier,
		Policy:     DefaultPolicy(),
	})
	return ts
}

// tokenFor creates a user with role and returns a bearer token for it.
func (ts *testServer) tokenFor(t *testing.T, email string, role Role) string {
	t.Helper()
	u, err := ts.auth.register(context.Background(), "Test", email, "secret", role)
	require.NoError(t, err)
	token, err := ts.tokens.Issue(*u)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}
