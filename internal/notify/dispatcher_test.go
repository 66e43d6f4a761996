package notify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversSignedEvent(t *testing.T) {
	type received struct {
		event     string
		signature string
		body      []byte
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got <- received{
			event:     r.Header.Get("X-Callback-Event"),
			signature: r.Header.Get("X-Callback-Signature"),
			body:      body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher("callback-secret")
	d.Send(srv.URL, EventGenerationCompleted, map[string]string{"id": "abc", "url": "https://img.example/1.png"})

	select {
	case rec := <-got:
		assert.Equal(t, EventGenerationCompleted, rec.event)

		mac := hmac.New(sha256.New, []byte("callback-secret"))
		mac.Write(rec.body)
		want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
		assert.Equal(t, want, rec.signature, "signature must cover the raw body")

		var payload map[string]string
		require.NoError(t, json.Unmarshal(rec.body, &payload))
		assert.Equal(t, "abc", payload["id"])
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never delivered")
	}
}

func TestDispatcherSkipsEmptyURL(t *testing.T) {
	d := NewDispatcher("callback-secret")
	d.Send("", EventGenerationFailed, map[string]string{"id": "abc"})
	// Nothing to assert beyond not blocking or panicking.
}

func TestSign(t *testing.T) {
	sig := Sign([]byte(`{"id":"abc"}`), "secret")
	assert.True(t, len(sig) == len("sha256=")+64)
	assert.Contains(t, sig, "sha256=")

	assert.NotEqual(t, sig, Sign([]byte(`{"id":"abc"}`), "other-secret"))
	assert.NotEqual(t, sig, Sign([]byte(`{"id":"xyz"}`), "secret"))
}
