package batchsync

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSync_DecodesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"total_accounts_synced":120,"total_workspaces":8,"successful_batches":3,"total_batches":4}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret"), WithHTTPClient(srv.Client()))
	res, err := c.RunSync(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 120, res.TotalAccountsSynced)
	assert.Equal(t, 8, res.TotalWorkspaces)
	assert.True(t, res.IsPartial())
}

func TestRunSync_NoAuthorizationWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":false,"error":"upstream down"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).RunSync(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "upstream down", res.Error)
}

func TestRunSync_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).RunSync(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestRunSync_RejectsInconsistentSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"successful_batches":5,"total_batches":4}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).RunSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sync summary")
}

func TestRunSync_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).RunSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestNew_OptionOrder(t *testing.T) {
	tests := []struct {
		name string
		opts []ClientOption
		want time.Duration
	}{
		{"default", nil, defaultTimeout},
		{"nil client then timeout", []ClientOption{WithHTTPClient(nil), WithTimeout(time.Minute)}, time.Minute},
		{"timeout then nil client", []ClientOption{WithTimeout(time.Minute), WithHTTPClient(nil)}, time.Minute},
		{"timeout then custom client", []ClientOption{WithTimeout(time.Minute), WithHTTPClient(&http.Client{})}, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c *Client
			require.NotPanics(t, func() { c = New("http://sync.local", tt.opts...) })
			require.NotNil(t, c.httpClient)
			assert.Equal(t, tt.want, c.httpClient.Timeout)
		})
	}
}

func TestNew_TimeoutDoesNotMutateSharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Second}

	c := New("http://sync.local", WithHTTPClient(shared), WithTimeout(time.Minute))

	assert.Equal(t, time.Minute, c.httpClient.Timeout)
	assert.Equal(t, time.Second, shared.Timeout)
}
