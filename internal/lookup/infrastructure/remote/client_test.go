package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackPostsEmailAndAction(t *testing.T) {
	var got trackRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"orders":[{"id":5,"customerEmail":"ann@x.io","products":[],"total":"3.50","status":"processing","date":"d"}],"timestamp":"2026-01-01T00:00:00.000Z"}`))
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL).Track(context.Background(), "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, trackRequest{Email: "ann@x.io", Action: "track"}, got)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(5), orders[0].ID)
	assert.Equal(t, "3.50", orders[0].Total.StringFixed(2))
}

func TestTrackErrors(t *testing.T) {
	status := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer status.Close()
	_, err := NewClient(status.URL).Track(context.Background(), "a")
	assert.ErrorContains(t, err, "unexpected status 502")

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer garbage.Close()
	_, err = NewClient(garbage.URL).Track(context.Background(), "a")
	assert.ErrorContains(t, err, "decode response")

	_, err = NewClient("http://127.0.0.1:1").Track(context.Background(), "a")
	assert.Error(t, err)
}
