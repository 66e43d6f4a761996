package background

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path string
	body map[string]any
}

func record(t *testing.T, respond func(path string, n int) (int, string)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var calls []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-token", r.Header.Get("api_token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		n := len(calls)
		calls = append(calls, recordedRequest{path: r.URL.Path, body: body})
		mu.Unlock()

		status, resp := respond(r.URL.Path, n)
		w.WriteHeader(status)
		w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRemoveByURL(t *testing.T) {
	srv, calls := record(t, func(path string, n int) (int, string) {
		return http.StatusOK, `{"result_url":"http://cdn.example/clean.png"}`
	})

	c := NewClient("secret-token", srv.URL)
	result, err := c.Remove(context.Background(), Request{ImageURL: "http://cdn.example/raw.png"})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/clean.png", result.ResultURL)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/v1/background/remove", call.path)
	assert.Equal(t, "http://cdn.example/raw.png", call.body["image_url"])
	assert.Equal(t, false, call.body["content_moderation"])
	assert.NotContains(t, call.body, "file")
}

func TestRemoveByBytes(t *testing.T) {
	imageData := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

	srv, calls := record(t, func(path string, n int) (int, string) {
		return http.StatusOK, `{"urls":["http://cdn.example/clean.png","http://cdn.example/extra.png"]}`
	})

	c := NewClient("secret-token", srv.URL)
	result, err := c.Remove(context.Background(), Request{ImageData: imageData, ContentModeration: true})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/clean.png", result.ResultURL)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, base64.StdEncoding.EncodeToString(imageData), call.body["file"])
	assert.Equal(t, true, call.body["content_moderation"])
	assert.NotContains(t, call.body, "image_url")
}

func TestRemove404FallsBackOnce(t *testing.T) {
	srv, calls := record(t, func(path string, n int) (int, string) {
		if path == "/v1/background/remove" {
			return http.StatusNotFound, `{"error":"not found"}`
		}
		return http.StatusOK, `{"url":"http://cdn.example/clean.png"}`
	})

	c := NewClient("secret-token", srv.URL)
	result, err := c.Remove(context.Background(), Request{ImageURL: "http://x/raw.png"})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/clean.png", result.ResultURL)

	require.Len(t, *calls, 2)
	assert.Equal(t, "/v1/background/remove", (*calls)[0].path)
	assert.Equal(t, "/v1/erase_background", (*calls)[1].path)
}

func TestRemoveFallbackFailureIsFatal(t *testing.T) {
	srv, calls := record(t, func(path string, n int) (int, string) {
		if path == "/v1/background/remove" {
			return http.StatusNotFound, `{"error":"not found"}`
		}
		return http.StatusInternalServerError, `{"error":"broken"}`
	})

	c := NewClient("secret-token", srv.URL)
	_, err := c.Remove(context.Background(), Request{ImageURL: "http://x/raw.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alternate endpoint")
	assert.Len(t, *calls, 2, "the alternate endpoint is tried exactly once")
}

func TestRemoveNon404IsFatal(t *testing.T) {
	srv, calls := record(t, func(path string, n int) (int, string) {
		return http.StatusUnprocessableEntity, `{"error":"moderation blocked"}`
	})

	c := NewClient("secret-token", srv.URL)
	_, err := c.Remove(context.Background(), Request{ImageURL: "http://x/raw.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Len(t, *calls, 1, "non-404 errors must not trigger the fallback")
}

func TestRemoveInputValidation(t *testing.T) {
	srv, calls := record(t, func(path string, n int) (int, string) {
		return http.StatusOK, `{"result_url":"http://x"}`
	})
	c := NewClient("secret-token", srv.URL)

	_, err := c.Remove(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be provided")

	_, err = c.Remove(context.Background(), Request{ImageURL: "http://x", ImageData: []byte{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	noKey := NewClient("", srv.URL)
	_, err = noKey.Remove(context.Background(), Request{ImageURL: "http://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRIA_API_KEY")

	assert.Empty(t, *calls)
}
