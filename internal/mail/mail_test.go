package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendClientSendOTP(t *testing.T) {
	var got resendRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewResendClient("re_test_key", "CrimeWatch <noreply@example.com>")
	client.endpoint = server.URL

	err := client.SendOTP(context.Background(), "admin@example.com", "123456")
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test_key", authHeader)
	assert.Equal(t, "CrimeWatch <noreply@example.com>", got.From)
	assert.Equal(t, []string{"admin@example.com"}, got.To)
	assert.Contains(t, got.HTML, "123456")
}

func TestResendClientSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewResendClient("bad-key", "CrimeWatch <noreply@example.com>")
	client.endpoint = server.URL

	err := client.SendOTP(context.Background(), "admin@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
