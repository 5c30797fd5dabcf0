package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedlists/sharedlists/internal/apikey"
)

// sharedPage builds the U1 (creator) / U2 (stranger) fixture used by the
// sharing scenarios: a page with one list holding one item.
type sharedPage struct {
	creatorToken  string
	strangerToken string
	strangerID    string
	pageID        string
	listID        string
	itemID        string
}

func newSharedPage(t *testing.T, s *testServer) sharedPage {
	t.Helper()
	u1 := s.createUser(t, "tw-1", "alice")
	u2 := s.createUser(t, "tw-2", "bob")
	fx := sharedPage{
		creatorToken:  s.sessionFor(t, u1),
		strangerToken: s.sessionFor(t, u2),
		strangerID:    u2.ID.String(),
	}

	w := s.do(t, http.MethodPost, "/api/pages", map[string]any{"title": "Groceries"}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fx.pageID = decodeData[idData](t, w).ID

	w = s.do(t, http.MethodPost, "/api/pages/"+fx.pageID+"/lists", map[string]any{"title": "Produce"}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fx.listID = decodeData[idData](t, w).ID

	w = s.do(t, http.MethodPost, "/api/lists/"+fx.listID+"/items", map[string]any{"content": "apples"}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fx.itemID = decodeData[idData](t, w).ID

	return fx
}

func TestSharingScenario_GrantUpdateRevoke(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)
	listsPath := "/api/pages/" + fx.pageID + "/lists"
	permsPath := "/api/pages/" + fx.pageID + "/permissions"

	// No permission: reads are forbidden.
	w := s.do(t, http.MethodGet, listsPath, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	// Read-only grant.
	w = s.do(t, http.MethodPost, permsPath, map[string]any{"userId": fx.strangerID, "canEdit": false}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	permID := decodeData[idData](t, w).ID

	w = s.do(t, http.MethodGet, listsPath, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, listsPath, map[string]any{"title": "Dairy"}, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Upgrade to editor.
	w = s.do(t, http.MethodPatch, permsPath+"/"+permID, map[string]any{"canEdit": true}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, listsPath, map[string]any{"title": "Dairy"}, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusCreated, w.Code)

	// Editors still cannot manage sharing or delete the page.
	w = s.do(t, http.MethodGet, permsPath, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, "/api/pages/"+fx.pageID, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Revoke removes all access.
	w = s.do(t, http.MethodDelete, permsPath+"/"+permID, nil, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, listsPath, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Revoking again is not an error.
	w = s.do(t, http.MethodDelete, permsPath+"/"+permID, nil, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSharingScenario_ItemsFollowPagePermission(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)
	itemPath := "/api/lists/" + fx.listID + "/items/" + fx.itemID

	w := s.do(t, http.MethodGet, itemPath, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPatch, itemPath, map[string]any{"checked": true}, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/pages/"+fx.pageID+"/permissions", map[string]any{"userId": fx.strangerID}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, itemPath, nil, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPatch, itemPath, map[string]any{"checked": true}, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPatch, itemPath, map[string]any{"checked": true}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeData[struct {
		Checked bool `json:"checked"`
	}](t, w).Checked)
}

func TestNestedResources_UnknownOrMismatchedParentIsNotFound(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)

	otherPage := s.do(t, http.MethodPost, "/api/pages", map[string]any{"title": "Other"}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, otherPage.Code)
	otherPageID := decodeData[idData](t, otherPage).ID

	tests := []struct {
		name  string
		path  string
		token string
	}{
		{"unknown list for items", "/api/lists/7f0c5c0e-6a8a-4b6e-9a3e-1f9c2f4b8d11/items", fx.strangerToken},
		{"list under the wrong page", "/api/pages/" + otherPageID + "/lists/" + fx.listID, fx.creatorToken},
		{"unknown page", "/api/pages/7f0c5c0e-6a8a-4b6e-9a3e-1f9c2f4b8d11", fx.creatorToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, nil, bearer(tt.token))
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "NOT_FOUND", errorCode(t, w))
		})
	}
}

func TestGrantRejections(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)
	permsPath := "/api/pages/" + fx.pageID + "/permissions"

	w := s.do(t, http.MethodPost, permsPath, map[string]any{"userId": fx.strangerID}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, permsPath, map[string]any{"userId": fx.strangerID, "canEdit": true}, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w))

	w = s.do(t, http.MethodPost, permsPath, map[string]any{"userId": "7f0c5c0e-6a8a-4b6e-9a3e-1f9c2f4b8d11"}, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, permsPath, map[string]any{"userId": "not-a-uuid"}, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = s.do(t, http.MethodGet, permsPath, nil, bearer(fx.creatorToken))
	require.Equal(t, http.StatusOK, w.Code)
	perms := decodeData[[]struct {
		CanEdit bool `json:"canEdit"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}](t, w)
	require.Len(t, perms, 1)
	assert.False(t, perms[0].CanEdit)
	assert.Equal(t, "bob", perms[0].User.Username)
}

func TestForbiddenBeforeValidation(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)
	pagePath := "/api/pages/" + fx.pageID
	unknownPermission := pagePath + "/permissions/7f0c5c0e-6a8a-4b6e-9a3e-1f9c2f4b8d11"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"grant with invalid user id", http.MethodPost, pagePath + "/permissions", map[string]any{"userId": "not-a-uuid"}},
		{"grant with malformed body", http.MethodPost, pagePath + "/permissions", "not an object"},
		{"permission update without canEdit", http.MethodPatch, unknownPermission, map[string]any{}},
		{"page update with empty title", http.MethodPatch, pagePath, map[string]any{"title": ""}},
		{"public slug with invalid format", http.MethodPut, pagePath + "/public-slug", map[string]any{"publicSlug": "NO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body, bearer(fx.strangerToken))
			assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
			assert.Equal(t, "FORBIDDEN", errorCode(t, w))
		})
	}

	// The creator still gets field errors for the same bodies.
	w := s.do(t, http.MethodPatch, pagePath, map[string]any{"title": ""}, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestPageList_CreatedThenShared(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)

	w := s.do(t, http.MethodPost, "/api/pages", map[string]any{"title": "Bob's own"}, bearer(fx.strangerToken))
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPost, "/api/pages/"+fx.pageID+"/permissions", map[string]any{"userId": fx.strangerID, "canEdit": true}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/pages", nil, bearer(fx.strangerToken))
	require.Equal(t, http.StatusOK, w.Code)
	pages := decodeData[[]struct {
		Title   string `json:"title"`
		Role    string `json:"role"`
		CanEdit bool   `json:"canEdit"`
	}](t, w)
	require.Len(t, pages, 2)
	assert.Equal(t, "Bob's own", pages[0].Title)
	assert.Equal(t, "creator", pages[0].Role)
	assert.Equal(t, "Groceries", pages[1].Title)
	assert.Equal(t, "shared", pages[1].Role)
	assert.True(t, pages[1].CanEdit)
}

func TestAuthentication_Failures(t *testing.T) {
	s := newTestServer(t)
	u := s.createUser(t, "tw-1", "alice")
	token := s.sessionFor(t, u)

	tests := []struct {
		name string
		opts []requestOption
	}{
		{"no credential", nil},
		{"unrecognised authorization scheme", []requestOption{header("Authorization", "sometoken")}},
		{"tampered bearer token", []requestOption{bearer(token + "x")}},
		{"unknown api key", []requestOption{header("X-Api-Key", "nope")}},
		{
			"invalid api key does not fall through to a valid bearer",
			[]requestOption{header("X-Api-Key", "nope"), bearer(token)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/pages", nil, tt.opts...)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
		})
	}
}

func TestAuthentication_DeletedUserIsRejected(t *testing.T) {
	s := newTestServer(t)
	u := s.createUser(t, "tw-1", "alice")
	token := s.sessionFor(t, u)

	w := s.do(t, http.MethodGet, "/api/auth/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	s.store.DeleteUser(u.ID)

	w = s.do(t, http.MethodGet, "/api/auth/me", nil, bearer(token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthentication_SessionCookie(t *testing.T) {
	s := newTestServer(t)
	u := s.createUser(t, "tw-1", "alice")

	w := s.do(t, http.MethodGet, "/api/auth/me", nil,
		header("Cookie", "theme=dark; auth_token="+s.sessionFor(t, u)+"; lang=en"))

	require.Equal(t, http.StatusOK, w.Code)
	me := decodeData[struct {
		Username  string   `json:"username"`
		Scopes    []string `json:"scopes"`
		ExpiresAt *string  `json:"expiresAt"`
	}](t, w)
	assert.Equal(t, "alice", me.Username)
	assert.Nil(t, me.Scopes)
	assert.NotNil(t, me.ExpiresAt)
}

func TestAPIKeys_ScopesAndLifecycle(t *testing.T) {
	s := newTestServer(t)
	u := s.createUser(t, "tw-1", "alice")
	session := s.sessionFor(t, u)

	// Arrange: a read-only key created through the session-only endpoint.
	w := s.do(t, http.MethodPost, "/api/settings/api-keys", map[string]any{"name": "cli", "scopes": []string{"read"}}, bearer(session))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}](t, w)
	require.Len(t, created.Token, 64)

	// Read works through both API-key carriers.
	w = s.do(t, http.MethodGet, "/api/pages", nil, header("X-Api-Key", created.Token))
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/auth/me", nil, header("Authorization", "ApiKey "+created.Token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"read"}, decodeData[struct {
		Scopes []string `json:"scopes"`
	}](t, w).Scopes)

	// Writes need the write scope.
	w = s.do(t, http.MethodPost, "/api/pages", map[string]any{"title": "x"}, header("X-Api-Key", created.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Keys cannot manage keys.
	w = s.do(t, http.MethodGet, "/api/settings/api-keys", nil, header("X-Api-Key", created.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Listing never exposes the token or its hash.
	w = s.do(t, http.MethodGet, "/api/settings/api-keys", nil, bearer(session))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.Token)
	assert.NotContains(t, w.Body.String(), "tokenHash")
	assert.NotContains(t, w.Body.String(), apikey.HashToken(created.Token))

	// Revoke, then the key stops authenticating.
	w = s.do(t, http.MethodDelete, "/api/settings/api-keys/"+created.ID, nil, bearer(session))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/pages", nil, header("X-Api-Key", created.Token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Revoking twice reports not found; a hard delete still removes the row.
	w = s.do(t, http.MethodDelete, "/api/settings/api-keys/"+created.ID, nil, bearer(session))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, "/api/settings/api-keys/"+created.ID+"?hard=true", nil, bearer(session))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAPIKeys_RepeatedScopesAreStoredOnce(t *testing.T) {
	s := newTestServer(t)
	session := s.sessionFor(t, s.createUser(t, "tw-1", "alice"))

	w := s.do(t, http.MethodPost, "/api/settings/api-keys", map[string]any{"scopes": []string{"read", "read", " write", "write"}}, bearer(session))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/settings/api-keys", nil, bearer(session))
	require.Equal(t, http.StatusOK, w.Code)
	keys := decodeData[[]struct {
		Scopes []string `json:"scopes"`
	}](t, w)
	require.Len(t, keys, 1)
	assert.Equal(t, []string{"read", "write"}, keys[0].Scopes)
}

func TestAPIKeys_OtherUsersKeysAreNotFound(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "tw-1", "alice")
	bob := s.createUser(t, "tw-2", "bob")

	created, err := s.keys.Create(context.Background(), alice.ID, nil, []string{"read"})
	require.NoError(t, err)

	for _, path := range []string{"/api/settings/api-keys/" + created.ID.String(), "/api/settings/api-keys/" + created.ID.String() + "?hard=true"} {
		w := s.do(t, http.MethodDelete, path, nil, bearer(s.sessionFor(t, bob)))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	_, err = s.keys.Verify(context.Background(), created.Token)
	assert.NoError(t, err, "alice's key must be untouched")
}

func TestAPIKeys_ValidationErrorsAreAggregated(t *testing.T) {
	s := newTestServer(t)
	u := s.createUser(t, "tw-1", "alice")

	w := s.do(t, http.MethodPost, "/api/settings/api-keys",
		map[string]any{"name": strings.Repeat("n", 101), "scopes": []string{"READ"}}, bearer(s.sessionFor(t, u)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Details []struct {
				Field string `json:"field"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Error.Details, 2)
}

func TestPublicSlug(t *testing.T) {
	s := newTestServer(t)
	fx := newSharedPage(t, s)
	slugPath := "/api/pages/" + fx.pageID + "/public-slug"

	w := s.do(t, http.MethodGet, "/api/public/groceries", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, slugPath, map[string]any{"publicSlug": "Bad Slug"}, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = s.do(t, http.MethodPut, slugPath, map[string]any{"publicSlug": "groceries"}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Anonymous read of the page with its lists and items.
	w = s.do(t, http.MethodGet, "/api/public/groceries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decodeData[struct {
		Title string `json:"title"`
		Lists []struct {
			Title string `json:"title"`
			Items []struct {
				Content string `json:"content"`
			} `json:"items"`
		} `json:"lists"`
	}](t, w)
	assert.Equal(t, "Groceries", public.Title)
	require.Len(t, public.Lists, 1)
	require.Len(t, public.Lists[0].Items, 1)
	assert.Equal(t, "apples", public.Lists[0].Items[0].Content)
	assert.NotContains(t, w.Body.String(), "creatorId")

	// Another page cannot take the slug.
	w = s.do(t, http.MethodPost, "/api/pages", map[string]any{"title": "Other"}, bearer(fx.creatorToken))
	otherID := decodeData[idData](t, w).ID
	w = s.do(t, http.MethodPut, "/api/pages/"+otherID+"/public-slug", map[string]any{"publicSlug": "groceries"}, bearer(fx.creatorToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w))

	// Only the creator manages the slug.
	w = s.do(t, http.MethodPost, "/api/pages/"+fx.pageID+"/permissions", map[string]any{"userId": fx.strangerID, "canEdit": true}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPut, slugPath, map[string]any{"publicSlug": nil}, bearer(fx.strangerToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Clearing withdraws public access.
	w = s.do(t, http.MethodPut, slugPath, map[string]any{"publicSlug": nil}, bearer(fx.creatorToken))
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/public/groceries", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserSearch(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "tw-1", "alice")
	s.createUser(t, "tw-2", "alicia")
	s.createUser(t, "tw-3", "bob")
	token := s.sessionFor(t, alice)

	w := s.do(t, http.MethodGet, "/api/users/search?q=a", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]idData](t, w))

	w = s.do(t, http.MethodGet, "/api/users/search?q=ali", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeData[[]struct {
		Username string `json:"username"`
	}](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, "alicia", found[0].Username)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	health := decodeData[struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Database struct {
			Connected bool `json:"connected"`
		} `json:"database"`
	}](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.True(t, health.Database.Connected)
}

func TestCORS_AllowsFrontendWithCredentials(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodOptions, "/api/pages", nil,
		header("Origin", "http://localhost:5173"),
		header("Access-Control-Request-Method", http.MethodPost))

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = s.do(t, http.MethodOptions, "/api/pages", nil,
		header("Origin", "https://evil.example"),
		header("Access-Control-Request-Method", http.MethodPost))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
