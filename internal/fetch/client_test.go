package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trust":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><title>Trust Center</title></html>")) //nolint:errcheck
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := New()

	t.Run("successful fetch", func(t *testing.T) {
		result, err := client.Get(context.Background(), srv.URL+"/trust")
		require.NoError(t, err)

		assert.True(t, result.OK())
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "text/html", result.ContentType())
		assert.Contains(t, string(result.Body), "Trust Center")
	})

	t.Run("not found returns result not error", func(t *testing.T) {
		result, err := client.Get(context.Background(), srv.URL+"/missing")
		require.NoError(t, err)

		assert.False(t, result.OK())
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
	})
}

func TestGet_SendsUserAgent(t *testing.T) {
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(WithUserAgent("probity-test/1.0"))

	_, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "probity-test/1.0", gotUA)
}

func TestGet_CapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 1024))) //nolint:errcheck
	}))
	defer srv.Close()

	client := New(WithMaxBodySize(128))

	result, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Len(t, result.Body, 128)
}

func TestGet_TransportError(t *testing.T) {
	client := New(WithTimeout(time.Second))

	// reserved TEST-NET address, nothing listens there
	_, err := client.Get(context.Background(), "http://192.0.2.1:1/")
	assert.ErrorIs(t, err, ErrRequestFailed)
}
