// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Arcade Contributors

package web_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadelabs/arcade/internal/auth"
	"github.com/arcadelabs/arcade/internal/auth/authtest"
	"github.com/arcadelabs/arcade/internal/catalog"
	"github.com/arcadelabs/arcade/internal/catalog/catalogtest"
	"github.com/arcadelabs/arcade/internal/space"
	"github.com/arcadelabs/arcade/internal/space/spacetest"
	"github.com/arcadelabs/arcade/internal/web"
	"github.com/arcadelabs/arcade/pkg/errutil"
)

type testServer struct {
	t     *testing.T
	srv   *web.Server
	users *authtest.UserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	catalogSvc, err := catalog.NewService(catalogtest.NewRepo())
	require.NoError(t, err)

	users := authtest.NewUserRepo()
	authSvc, err := auth.NewService(auth.ServiceConfig{
		Users:    users,
		Sessions: authtest.NewSessionRepo(),
		Hasher:   auth.NewArgon2idHasher(),
		Avatars:  catalogSvc,
		Tx:       authtest.Tx{},
	})
	require.NoError(t, err)

	spaceSvc, err := space.NewService(space.ServiceConfig{
		Repo:    spacetest.NewRepo(),
		Catalog: catalogSvc,
	})
	require.NoError(t, err)

	srv, err := web.NewServer(web.Config{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Spaces:  spaceSvc,
	})
	require.NoError(t, err)

	return &testServer{t: t, srv: srv, users: users}
}

// do sends a JSON request and decodes the JSON response body.
func (ts *testServer) do(method, path, token string, body any) (int, map[string]any) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.srv.App().Test(req, -1)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(ts.t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func (ts *testServer) signUp(username, password, role string) string {
	ts.t.Helper()
	status, body := ts.do(http.MethodPost, "/api/v1/signup", "", map[string]any{
		"username": username,
		"password": password,
		"type":     role,
	})
	require.Equal(ts.t, http.StatusOK, status, "signup: %v", body)
	return body["userId"].(string)
}

func (ts *testServer) signIn(username, password string) string {
	ts.t.Helper()
	status, body := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(ts.t, http.StatusOK, status, "signin: %v", body)
	return body["token"].(string)
}

func (ts *testServer) adminToken() string {
	ts.t.Helper()
	ts.signUp("admin", "admin-password", "admin")
	return ts.signIn("admin", "admin-password")
}

func (ts *testServer) createElement(token string) string {
	ts.t.Helper()
	status, body := ts.do(http.MethodPost, "/api/v1/admin/element", token, map[string]any{
		"imageUrl": "https://cdn.example.com/chair.png",
		"width":    1,
		"height":   1,
		"static":   true,
	})
	require.Equal(ts.t, http.StatusOK, status, "create element: %v", body)
	return body["id"].(string)
}

func TestSignUp(t *testing.T) {
	t.Run("returns user id", func(t *testing.T) {
		ts := newTestServer(t)
		userID := ts.signUp("kirat", "password123", "user")

		_, err := ulid.Parse(userID)
		require.NoError(t, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		ts := newTestServer(t)
		ts.signUp("kirat", "password123", "user")

		status, body := ts.do(http.MethodPost, "/api/v1/signup", "", map[string]any{
			"username": "kirat",
			"password": "password123",
			"type":     "user",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "user already exists", body["message"])
	})

	t.Run("empty username", func(t *testing.T) {
		ts := newTestServer(t)

		status, body := ts.do(http.MethodPost, "/api/v1/signup", "", map[string]any{
			"password": "password123",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "username cannot be empty", body["message"])
	})

	t.Run("empty password", func(t *testing.T) {
		ts := newTestServer(t)

		status, body := ts.do(http.MethodPost, "/api/v1/signup", "", map[string]any{
			"username": "kirat",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "password cannot be empty", body["message"])
	})

	t.Run("invalid role", func(t *testing.T) {
		ts := newTestServer(t)

		status, _ := ts.do(http.MethodPost, "/api/v1/signup", "", map[string]any{
			"username": "kirat",
			"password": "password123",
			"type":     "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestSignIn(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		ts := newTestServer(t)
		ts.signUp("kirat", "password123", "user")

		token := ts.signIn("kirat", "password123")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		ts := newTestServer(t)
		ts.signUp("kirat", "password123", "user")

		status, body := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
			"username": "kirat",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Invalid password", body["message"])
	})

	t.Run("unknown username", func(t *testing.T) {
		ts := newTestServer(t)

		status, body := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
			"username": "nobody",
			"password": "password123",
		})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Invalid username", body["message"])
	})

	t.Run("account locks after repeated failures", func(t *testing.T) {
		ts := newTestServer(t)
		ts.signUp("kirat", "password123", "user")

		for i := 0; i < auth.LockoutThreshold; i++ {
			status, _ := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
				"username": "kirat",
				"password": "wrong",
			})
			assert.Equal(t, http.StatusForbidden, status)
		}

		status, body := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
			"username": "kirat",
			"password": "password123",
		})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, auth.LockedMessage, body["message"])
	})
}

func TestStorageUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp("kirat", "password123", "user")

	// A storage failure surfaces the same way the postgres repos report it.
	ts.users.Err = errutil.Unavailable("service temporarily unavailable")

	status, body := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
		"username": "kirat",
		"password": "password123",
	})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "service temporarily unavailable", body["message"])
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing header", func(t *testing.T) {
		status, body := ts.do(http.MethodGet, "/api/v1/space/all", "", nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Unauthorized Access", body["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		status, body := ts.do(http.MethodGet, "/api/v1/space/all", "not-a-token", nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Unauthorized Access", body["message"])
	})

	t.Run("space fetch is gated", func(t *testing.T) {
		status, body := ts.do(http.MethodGet, "/api/v1/space/"+ulid.Make().String(), "", nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Unauthorized Access", body["message"])
	})
}

func TestAdminGate(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp("kirat", "password123", "user")
	userToken := ts.signIn("kirat", "password123")

	status, body := ts.do(http.MethodPost, "/api/v1/admin/element", userToken, map[string]any{
		"imageUrl": "x.png", "width": 1, "height": 1,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You are not authorized to access this route", body["message"])

	// Admins pass.
	adminToken := ts.adminToken()
	status, _ = ts.do(http.MethodPost, "/api/v1/admin/element", adminToken, map[string]any{
		"imageUrl": "x.png", "width": 1, "height": 1,
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestSignOut(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp("kirat", "password123", "user")
	token := ts.signIn("kirat", "password123")

	status, body := ts.do(http.MethodPost, "/api/v1/signout", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logged out successfully", body["message"])

	// The token no longer resolves.
	status, _ = ts.do(http.MethodGet, "/api/v1/space/all", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp("kirat", "old-password", "user")
	token := ts.signIn("kirat", "old-password")

	// No auth header: the current password is the proof of identity.
	status, body := ts.do(http.MethodPost, "/api/v1/change-password", "", map[string]any{
		"username":    "kirat",
		"password":    "old-password",
		"newPassword": "new-password",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password changed successfully", body["message"])

	// Existing sessions are revoked.
	status, _ = ts.do(http.MethodGet, "/api/v1/space/all", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// New password works, old does not.
	status, _ = ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
		"username": "kirat", "password": "old-password",
	})
	assert.Equal(t, http.StatusForbidden, status)
	ts.signIn("kirat", "new-password")

	// Wrong current password is rejected.
	status, body = ts.do(http.MethodPost, "/api/v1/change-password", "", map[string]any{
		"username":    "kirat",
		"password":    "old-password",
		"newPassword": "whatever",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Invalid password", body["message"])
}

func TestMetadata(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken()

	status, body := ts.do(http.MethodPost, "/api/v1/admin/avatar", adminToken, map[string]any{
		"imageUrl": "timmy.png",
		"name":     "Timmy",
	})
	require.Equal(t, http.StatusOK, status)
	avatarID := body["avatarId"].(string)

	userID := ts.signUp("kirat", "password123", "user")
	token := ts.signIn("kirat", "password123")

	t.Run("set avatar", func(t *testing.T) {
		status, body := ts.do(http.MethodPost, "/api/v1/user/metadata", token, map[string]any{
			"avatarId": avatarID,
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Metadata updated successfully", body["message"])
	})

	t.Run("unknown avatar id", func(t *testing.T) {
		status, body := ts.do(http.MethodPost, "/api/v1/user/metadata", token, map[string]any{
			"avatarId": ulid.Make().String(),
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid avatar id", body["message"])
	})

	t.Run("malformed avatar id", func(t *testing.T) {
		status, body := ts.do(http.MethodPost, "/api/v1/user/metadata", token, map[string]any{
			"avatarId": "123",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid avatar id", body["message"])
	})

	t.Run("list avatars is public", func(t *testing.T) {
		status, body := ts.do(http.MethodGet, "/api/v1/avatars", "", nil)
		require.Equal(t, http.StatusOK, status)
		avatars := body["avatars"].([]any)
		require.Len(t, avatars, 1)
		entry := avatars[0].(map[string]any)
		assert.Equal(t, "Timmy", entry["name"])
		assert.Equal(t, "timmy.png", entry["imageUrl"])
	})

	t.Run("bulk metadata", func(t *testing.T) {
		otherID := ts.signUp("bob", "password123", "user")

		ids := url.QueryEscape(fmt.Sprintf("[%s,%s]", userID, otherID))
		status, body := ts.do(http.MethodGet, "/api/v1/user/metadata/bulk?ids="+ids, token, nil)
		require.Equal(t, http.StatusOK, status)

		entries := body["avatars"].([]any)
		require.Len(t, entries, 2)
		byUser := map[string]map[string]any{}
		for _, e := range entries {
			m := e.(map[string]any)
			byUser[m["userId"].(string)] = m
		}
		assert.Equal(t, "timmy.png", byUser[userID]["imageUrl"])
		assert.NotContains(t, byUser[otherID], "imageUrl")
	})
}

func TestSpaceRoutes(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken()
	elementID := ts.createElement(adminToken)

	ts.signUp("kirat", "password123", "user")
	token := ts.signIn("kirat", "password123")

	status, body := ts.do(http.MethodPost, "/api/v1/space", token, map[string]any{
		"name":       "My Space",
		"dimensions": "100x200",
	})
	require.Equal(t, http.StatusOK, status, "create space: %v", body)
	spaceID := body["spaceId"].(string)

	t.Run("missing dimensions and map", func(t *testing.T) {
		status, body := ts.do(http.MethodPost, "/api/v1/space", token, map[string]any{
			"name": "My Space",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "dimensions or mapId is required", body["message"])
	})

	t.Run("list own spaces", func(t *testing.T) {
		status, body := ts.do(http.MethodGet, "/api/v1/space/all", token, nil)
		require.Equal(t, http.StatusOK, status)
		spaces := body["spaces"].([]any)
		require.Len(t, spaces, 1)
		entry := spaces[0].(map[string]any)
		assert.Equal(t, spaceID, entry["id"])
		assert.Equal(t, "100x200", entry["dimensions"])
	})

	t.Run("place and fetch element", func(t *testing.T) {
		status, body := ts.do(http.MethodPost, "/api/v1/space/element", token, map[string]any{
			"spaceId":   spaceID,
			"elementId": elementID,
			"x":         10,
			"y":         20,
		})
		require.Equal(t, http.StatusOK, status, "place: %v", body)
		instanceID := body["id"].(string)

		status, body = ts.do(http.MethodGet, "/api/v1/space/"+spaceID, token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "100x200", body["dimensions"])
		elements := body["elements"].([]any)
		require.Len(t, elements, 1)
		entry := elements[0].(map[string]any)
		assert.Equal(t, instanceID, entry["id"])
		assert.Equal(t, float64(10), entry["x"])
		assert.Equal(t, float64(20), entry["y"])
		template := entry["element"].(map[string]any)
		assert.Equal(t, elementID, template["id"])
		assert.Equal(t, true, template["static"])

		status, body = ts.do(http.MethodDelete, "/api/v1/space/element", token, map[string]any{
			"id": instanceID,
		})
		require.Equal(t, http.StatusOK, status, "remove: %v", body)

		status, body = ts.do(http.MethodGet, "/api/v1/space/"+spaceID, token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["elements"])
	})

	t.Run("out of bounds placement", func(t *testing.T) {
		status, body := ts.do(http.MethodPost, "/api/v1/space/element", token, map[string]any{
			"spaceId":   spaceID,
			"elementId": elementID,
			"x":         10000,
			"y":         210000,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "element lies outside the dimensions", body["message"])
	})

	t.Run("remove unknown element", func(t *testing.T) {
		status, body := ts.do(http.MethodDelete, "/api/v1/space/element", token, map[string]any{
			"id": ulid.Make().String(),
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "element not found", body["message"])
	})

	t.Run("delete by non-owner", func(t *testing.T) {
		ts.signUp("mallory", "password123", "user")
		otherToken := ts.signIn("mallory", "password123")

		status, body := ts.do(http.MethodDelete, "/api/v1/space/"+spaceID, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Unauthorized", body["message"])
	})

	t.Run("delete by owner", func(t *testing.T) {
		status, _ := ts.do(http.MethodDelete, "/api/v1/space/"+spaceID, token, nil)
		require.Equal(t, http.StatusOK, status)

		status, body := ts.do(http.MethodGet, "/api/v1/space/"+spaceID, token, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Space not found", body["message"])
	})
}

func TestSpaceFromMap(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken()
	elementID := ts.createElement(adminToken)

	status, body := ts.do(http.MethodPost, "/api/v1/admin/map", adminToken, map[string]any{
		"name":       "Office",
		"dimensions": "100x200",
		"thumbnail":  "thumb.png",
		"defaultElements": []map[string]any{
			{"elementId": elementID, "x": 1, "y": 2},
			{"elementId": elementID, "x": 3, "y": 4},
		},
	})
	require.Equal(t, http.StatusOK, status, "create map: %v", body)
	mapID := body["id"].(string)

	ts.signUp("kirat", "password123", "user")
	token := ts.signIn("kirat", "password123")

	status, body = ts.do(http.MethodPost, "/api/v1/space", token, map[string]any{
		"name":  "My Office",
		"mapId": mapID,
	})
	require.Equal(t, http.StatusOK, status, "create space: %v", body)
	spaceID := body["spaceId"].(string)

	status, body = ts.do(http.MethodGet, "/api/v1/space/"+spaceID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "100x200", body["dimensions"])
	assert.Len(t, body["elements"].([]any), 2)
}

func TestAdminElementUpdate(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken()
	elementID := ts.createElement(adminToken)

	status, _ := ts.do(http.MethodPut, "/api/v1/admin/element/"+elementID, adminToken, map[string]any{
		"imageUrl": "new.png",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := ts.do(http.MethodPut, "/api/v1/admin/element/"+ulid.Make().String(), adminToken, map[string]any{
		"imageUrl": "new.png",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "element not found", body["message"])
}

func TestAdminUnlock(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken()
	ts.signUp("kirat", "password123", "user")

	for i := 0; i < auth.LockoutThreshold; i++ {
		ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
			"username": "kirat", "password": "wrong",
		})
	}
	status, body := ts.do(http.MethodPost, "/api/v1/signin", "", map[string]any{
		"username": "kirat", "password": "password123",
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, auth.LockedMessage, body["message"])

	status, _ = ts.do(http.MethodPost, "/api/v1/admin/unlock", adminToken, map[string]any{
		"username": "kirat",
	})
	require.Equal(t, http.StatusOK, status)

	ts.signIn("kirat", "password123")
}
