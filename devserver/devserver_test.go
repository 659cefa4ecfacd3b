package devserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.voidsdatastore.net/voids/datastore"
)

var fastPoll = datastore.PollPolicy{Interval: 2 * time.Millisecond, Timeout: 2 * time.Second}

// newTestServer starts the dev server on an httptest listener and returns
// a client pointed at it.
func newTestServer(t *testing.T, cfg Config) (*Server, *datastore.Client) {
	t.Helper()

	srv := New(cfg, "")
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "test-key"
	}

	client, err := datastore.New(datastore.Config{
		APIKey:  apiKey,
		BaseURL: ts.URL + "/api/v1/",
		Poll:    fastPoll,
	})
	require.NoError(t, err)

	return srv, client
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, Config{})
	ctx := context.Background()

	t.Run("json document", func(t *testing.T) {
		doc := map[string]any{"theme": "dark", "limit": float64(3)}

		_, err := client.Update(ctx, "myapp", "settings", doc)
		require.NoError(t, err)

		val, err := client.Get(ctx, "myapp", "settings")
		require.NoError(t, err)
		assert.True(t, val.IsJSON())

		var got map[string]any
		require.NoError(t, val.Decode(&got))
		assert.Equal(t, doc, got)
	})

	t.Run("raw text", func(t *testing.T) {
		_, err := client.Update(ctx, "myapp", "motd", "hello, operators")
		require.NoError(t, err)

		val, err := client.Get(ctx, "myapp", "motd")
		require.NoError(t, err)
		assert.False(t, val.IsJSON())
		assert.Equal(t, "hello, operators", val.String())
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := client.Get(ctx, "myapp", "nope")
		var derr *datastore.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, http.StatusNotFound, derr.StatusCode)
		assert.Equal(t, "key 'nope' doesn't exist in the 'myapp' namespace", derr.Message)
	})

	t.Run("null deletes", func(t *testing.T) {
		_, err := client.Update(ctx, "myapp", "temp", 123)
		require.NoError(t, err)

		val, err := client.Delete(ctx, "myapp", "temp")
		require.NoError(t, err)
		assert.True(t, val.IsNull())

		_, err = client.Get(ctx, "myapp", "temp")
		var derr *datastore.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, http.StatusNotFound, derr.StatusCode)
	})
}

func TestDeferredWrite(t *testing.T) {
	t.Parallel()

	srv, client := newTestServer(t, Config{
		DeferPut:     true,
		PendingPolls: 2,
		RetryAfter:   5 * time.Millisecond,
	})
	ctx := context.Background()

	val, err := client.Update(ctx, "bank", "accounts", map[string]int{"Balance": 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Balance": 42}`, val.String())

	// The write itself was applied immediately.
	entry, ok, err := srv.store.Get("bank", "accounts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.JSON)
	assert.JSONEq(t, `{"Balance": 42}`, string(entry.Data))

	// Reads resolve synchronously here.
	got, err := client.Get(ctx, "bank", "accounts")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Balance": 42}`, got.String())
}

func TestDeferredRead(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, Config{
		DeferGet:     true,
		PendingPolls: 1,
	})
	ctx := context.Background()

	_, err := client.Update(ctx, "ns", "k", "deferred text")
	require.NoError(t, err)

	val, err := client.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.False(t, val.IsJSON())
	assert.Equal(t, "deferred text", val.String())
}

func TestLegacyRequestIDField(t *testing.T) {
	t.Parallel()

	_, client := newTestServer(t, Config{
		DeferPut:             true,
		PendingPolls:         1,
		LegacyRequestIDField: true,
	})

	val, err := client.Update(context.Background(), "ns", "k", "legacy ack")
	require.NoError(t, err)
	assert.Equal(t, "legacy ack", val.String())
}

func TestDeferOverThreshold(t *testing.T) {
	t.Parallel()

	srv := New(Config{DeferOver: 10, PendingPolls: 1}, "")
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	post := func(body string) *http.Response {
		resp, err := http.Post(
			ts.URL+"/api/v1/key/ns/k", "text/plain", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// Under the threshold: served synchronously.
	resp := post("tiny")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// At or over the threshold: acknowledged for later.
	resp = post("0123456789abcdef")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "requestId")
}

func TestAuth(t *testing.T) {
	t.Parallel()

	srv := New(Config{APIKey: "local-key"}, "")
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	newClient := func(apiKey string) *datastore.Client {
		client, err := datastore.New(datastore.Config{
			APIKey:  apiKey,
			BaseURL: ts.URL + "/api/v1/",
		})
		require.NoError(t, err)
		return client
	}

	// The right key passes.
	_, err := newClient("local-key").Update(context.Background(), "ns", "k", "v")
	require.NoError(t, err)

	// The wrong one is rejected with the error envelope.
	_, err = newClient("wrong").Get(context.Background(), "ns", "k")
	var derr *datastore.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusUnauthorized, derr.StatusCode)
	assert.Equal(t, "invalid API key", derr.Message)
}

func TestStatusUnknownID(t *testing.T) {
	t.Parallel()

	srv := New(Config{}, "")
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/status/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "unknown request id 'nope'")
}

func TestHeartbeat(t *testing.T) {
	t.Parallel()

	srv := New(Config{}, "")
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemory()

	require.NoError(t, s.Set("ns", "k", Entry{Data: []byte("v"), JSON: false}))

	entry, ok, err := s.Get("ns", "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), entry.Data)

	// Namespace and key boundaries don't bleed into each other.
	_, ok, err = s.Get("n", "sk")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete("ns", "k"))
	_, ok, err = s.Get("ns", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Close())
}

func TestPendingSet(t *testing.T) {
	t.Parallel()

	ids := 0
	p := newPendingSet(func() string {
		ids++
		return "id-1"
	})

	id := p.add(result{status: 200, body: []byte("done")}, 2)
	assert.Equal(t, "id-1", id)

	for i := 0; i < 2; i++ {
		_, pending, ok := p.poll(id)
		require.True(t, ok)
		assert.True(t, pending)
	}

	res, pending, ok := p.poll(id)
	require.True(t, ok)
	assert.False(t, pending)
	assert.Equal(t, "done", string(res.body))

	// Claimed results are forgotten.
	_, _, ok = p.poll(id)
	assert.False(t, ok)
}
