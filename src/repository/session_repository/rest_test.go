package session_repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/endpointops/android-app-importer/src/entity/clientmodule"
	"github.com/endpointops/android-app-importer/src/entity/platform"
	"github.com/endpointops/android-app-importer/src/use_case"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModule(tokenEndpoint string) clientmodule.Module {
	return clientmodule.Module{
		TokenEndpoint: tokenEndpoint,
		BaseURL:       "https://api.example.com/v1.0",
		TenantID:      "contoso.example.com",
		ClientID:      "client-abc",
		ClientSecret:  "s3cret",
		Scope:         "https://api.example.com/.default",
		Platform:      platform.PlatformTypeAndroid,
	}
}

func TestConnect(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-abc", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	repo := NewRest(testModule(srv.URL), "")
	sess, err := repo.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", sess.AccessToken)
	assert.Equal(t, "Bearer", sess.TokenType)
	assert.Equal(t, "contoso.example.com", sess.TenantID)
	assert.Equal(t, 1, calls)
}

func TestConnectReusesCachedToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "module.json.tokencache")
	repo := NewRest(testModule(srv.URL), cachePath)

	_, err := repo.Connect(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, cachePath)

	sess, err := repo.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", sess.AccessToken)
	assert.Equal(t, 1, calls)
}

func TestConnectIgnoresCacheOfOtherClient(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "module.json.tokencache")
	repo := NewRest(testModule(srv.URL), cachePath)
	_, err := repo.Connect(context.Background())
	require.NoError(t, err)

	other := testModule(srv.URL)
	other.ClientID = "client-xyz"
	repoOther := NewRest(other, cachePath)
	_, err = repoOther.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestConnectRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	repo := NewRest(testModule(srv.URL), "")
	_, err := repo.Connect(context.Background())
	assert.ErrorIs(t, err, use_case.ErrConnectingSession)
}

func TestConnectEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	repo := NewRest(testModule(srv.URL), "")
	_, err := repo.Connect(context.Background())
	assert.ErrorIs(t, err, use_case.ErrConnectingSession)
}
