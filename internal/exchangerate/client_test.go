package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92,"CNY":7.24}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rates, err := client.Latest(context.Background(), "USD")

	require.NoError(t, err)
	assert.Equal(t, 0.92, rates["EUR"])
	assert.Equal(t, 7.24, rates["CNY"])
	assert.Equal(t, 1.0, rates["USD"], "base currency rate must be present")
}

func TestLatest_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Latest(context.Background(), "XXX")
	assert.Error(t, err)
}

func TestLatest_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Latest(context.Background(), "USD")
	assert.Error(t, err)
}
