package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgforge/orgforge/internal/errors"
)

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.SetToken("tok-123")

	_, err := c.ListOrgs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestClient_UnauthorizedTriggersGlobalHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	var fired bool
	c.SetUnauthorizedHandler(func() { fired = true })

	_, err := c.GetLimits(context.Background(), "00Dxx")
	require.Error(t, err)
	assert.True(t, fired, "401 must invoke the unauthorized handler")

	var ofErr *errors.OrgForgeError
	require.ErrorAs(t, err, &ofErr)
	assert.Equal(t, errors.ErrCodeAuthUnauthorized, ofErr.Code)
}

func TestClient_SurfacesErrorBodyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	_, err := c.Login(context.Background(), "x@y.z", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestClient_LoginCapturesCookieCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "cookie-token"})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"u1","name":"Dana","email":"d@example.com","activeOrgId":"00Dxx"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	resp, err := c.Login(context.Background(), "d@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, "00Dxx", resp.User.ActiveOrgID)
	assert.Equal(t, "cookie-token", resp.Token)
	assert.Equal(t, "cookie-token", c.Token())
}

func TestClient_LoginPrefersBodyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "cookie-token"})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"u1"},"token":"body-token"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	resp, err := c.Login(context.Background(), "d@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "body-token", resp.Token)
}

func TestClient_OrgScopedPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[],"totalElements":0,"totalPages":0,"number":0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	_, err := c.GetTestRuns(context.Background(), "00D xx", 2, 15)
	require.NoError(t, err)
	assert.Equal(t, "/api/apex-pulse/history/runs?orgId=00D+xx&page=2&size=15", gotPath)
}

func TestClient_TransportErrorIsCoded(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)

	_, err := c.ListOrgs(context.Background())
	require.Error(t, err)

	var ofErr *errors.OrgForgeError
	require.ErrorAs(t, err, &ofErr)
	assert.Equal(t, errors.ErrCodeAPIRequest, ofErr.Code)
}
