package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sharedlists/sharedlists/internal/api"
	"github.com/sharedlists/sharedlists/internal/apikey"
	"github.com/sharedlists/sharedlists/internal/auth"
	"github.com/sharedlists/sharedlists/internal/memstore"
	"github.com/sharedlists/sharedlists/internal/permission"
	"github.com/sharedlists/sharedlists/internal/user"
)

var testSecret = strings.Repeat("k", 32)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

// stubLogin completes every login as the configured user.
type stubLogin struct {
	sessions *auth.SessionManager
	user     *user.User
	err      error
}

func (s *stubLogin) AuthURL(state string) string {
	return "https://id.twitch.tv/oauth2/authorize?state=" + state
}

func (s *stubLogin) Login(_ context.Context, _ string) (*auth.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	token, exp, err := s.sessions.Issue(s.user)
	if err != nil {
		return nil, err
	}
	return &auth.LoginResult{User: s.user, Token: token, ExpiresAt: exp}, nil
}

type testServer struct {
	router   *chi.Mux
	store    *memstore.Store
	sessions *auth.SessionManager
	keys     *apikey.Service
	login    *stubLogin
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memstore.New()
	sessions := auth.NewSessionManager(testSecret)
	keys := apikey.NewService(store.APIKeys())
	authority := permission.NewAuthority(store.Pages(), store.Permissions(), store.Users(), store.Lists())
	login := &stubLogin{sessions: sessions}

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       pinger{},
		Version:        "test",
		FrontendOrigin: "http://localhost:5173",
		FrontendURL:    "http://localhost:5173",
		Resolver:       auth.NewResolver(sessions, keys, store.Users()),
		Login:          login,
		Users:          store.Users(),
		APIKeys:        keys,
		Pages:          store.Pages(),
		Lists:          store.Lists(),
		Authority:      authority,
	})

	return &testServer{router: router, store: store, sessions: sessions, keys: keys, login: login}
}

func (s *testServer) createUser(t *testing.T, twitchID, username string) *user.User {
	t.Helper()
	u, err := s.store.Users().Create(context.Background(), user.ProviderInfo{TwitchID: twitchID, Username: username})
	require.NoError(t, err)
	return u
}

func (s *testServer) sessionFor(t *testing.T, u *user.User) string {
	t.Helper()
	token, _, err := s.sessions.Issue(u)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func bearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func header(name, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func (s *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"requestId"`
	} `json:"meta"`
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(parseEnvelope(t, w).Data, &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

type idData struct {
	ID string `json:"id"`
}
