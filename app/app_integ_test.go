package app

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.voidsdatastore.net/voids/datastore"
	"go.voidsdatastore.net/voids/devserver"
)

const testAPIKey = "test-key-123"

func TestAppDatastore(t *testing.T) {
	t.Parallel()

	// wg.Wait must be deferred before the test context cancellation (so that
	// it's called after it when the function returns) to avoid waiting for the
	// context timeout to be reached.
	var wg sync.WaitGroup
	defer wg.Wait()

	timeout := 10 * time.Second
	tctx, cancel, h := newTestContext(t, timeout)
	defer cancel()

	// srvApp runs the dev server with authentication and deferred writes, so
	// every write below exercises the full 202/poll path.
	srvApp, err := newTestApp(tctx)
	h(assert.NoError(t, err))
	srvApp.env.Set("VOIDS_DATASTORE_API_KEY", testAPIKey)

	addrCh := make(chan string)
	srvApp.stderr.waitFor(`started dev server.*address=(.*)\n`, 1, addrCh)

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := srvApp.Run("serve", "--address=:0",
			"--defer-writes", "--pending-polls=1", "--retry-after=10ms")
		h(assert.NoError(t, err))
	}()

	var srvAddress string
	select {
	case srvAddress = <-addrCh:
	case <-tctx.Done():
		t.Fatalf("timed out after %s", timeout)
	}

	baseURL := fmt.Sprintf("http://%s/api/v1/", srvAddress)

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))
	app.env.Set("VOIDS_DATASTORE_API_KEY", testAPIKey)

	run := func(args ...string) error {
		common := []string{
			"--base-url=" + baseURL, "--poll-interval=50ms", "--poll-timeout=5s",
		}
		return app.Run(append(common, args...)...)
	}

	t.Run("ok/set_get", func(t *testing.T) {
		err := run("set", "myapp", "greeting", "hello")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "", app.stdout.String()))

		err = run("get", "myapp", "greeting")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "hello\n", app.stdout.String()))

		err = run("set", "myapp", "config", `{"b":1,"a":2}`)
		h(assert.NoError(t, err))

		err = run("get", "myapp", "config")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": 2\n}\n", app.stdout.String()))

		err = run("set", "myapp", "motd", `"hi there"`)
		h(assert.NoError(t, err))

		err = run("get", "myapp", "motd")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "hi there\n", app.stdout.String()))
	})

	t.Run("ok/rm", func(t *testing.T) {
		err := run("rm", "myapp", "greeting")
		h(assert.NoError(t, err))

		err = run("get", "myapp", "greeting")
		h(assert.EqualError(t, err,
			"datastore: get failed with status 404: key 'greeting' doesn't exist in the 'myapp' namespace"))
	})

	t.Run("ok/leaderboard", func(t *testing.T) {
		err := run("lb", "create", "guild-1", "points", "--symbol=$")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "Created leaderboard 'points'\n", app.stdout.String()))

		err = run("lb", "create", "guild-1", "points")
		h(assert.EqualError(t, err, "failed creating leaderboard 'points'"))

		err = run("lb", "set-score", "guild-1", "points", "ana", "5")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "Set ana's score to 5 on 'points'\n", app.stdout.String()))

		err = run("lb", "set-score", "guild-1", "points", "zed", "9")
		h(assert.NoError(t, err))

		err = run("lb", "set-score", "guild-1", "points", "bob", "5")
		h(assert.NoError(t, err))

		err = run("lb", "show", "guild-1", "points")
		h(assert.NoError(t, err))
		out := app.stdout.String()
		h(assert.Regexp(t, `RANK\s+MEMBER\s+SCORE`, out))
		h(assert.Regexp(t, `1\s+zed\s+\$9`, out))
		h(assert.Regexp(t, `2\s+ana\s+\$5`, out))
		h(assert.Regexp(t, `3\s+bob\s+\$5`, out))

		err = run("lb", "ls", "guild-1")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "points\n", app.stdout.String()))

		err = run("lb", "rm", "guild-1", "points")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "Deleted leaderboard 'points'\n", app.stdout.String()))

		err = run("lb", "show", "guild-1", "points")
		h(assert.EqualError(t, err, "leaderboard not found"))

		err = run("lb", "ls", "guild-1")
		h(assert.NoError(t, err))
		h(assert.Equal(t, "", app.stdout.String()))
	})

	t.Run("err/wrong_api_key", func(t *testing.T) {
		badApp, err := newTestApp(tctx)
		h(assert.NoError(t, err))
		badApp.env.Set("VOIDS_DATASTORE_API_KEY", "wrong-key")

		err = badApp.Run("--base-url="+baseURL, "get", "myapp", "config")
		h(assert.EqualError(t, err,
			"datastore: get failed with status 401: invalid API key"))
	})

	t.Run("err/missing_api_key", func(t *testing.T) {
		noKeyApp, err := newTestApp(tctx)
		h(assert.NoError(t, err))

		err = noKeyApp.Run("get", "myapp", "config")
		h(assert.EqualError(t, err, "failed creating datastore client"))
		h(assert.ErrorIs(t, err, datastore.ErrAPIKeyMissing))
	})
}

func TestAppVersion(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 3*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	err = app.Run("version")
	h(assert.NoError(t, err))
	h(assert.Regexp(t, `^v\d+\.\d+\.\d+.* \(.+, .+/.+\)\n$`, app.stdout.String()))
}

func TestAppLogLevel(t *testing.T) {
	t.Parallel()

	srv := devserver.New(devserver.Config{}, "")
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	testCases := []struct {
		name   string
		args   []string
		expLog string
		expErr string
	}{
		{
			name: "default",
			args: []string{"set", "ns", "k", "v"},
		},
		{
			name:   "debug",
			args:   []string{"--log-level=debug", "set", "ns", "k", "v"},
			expLog: "sending request",
		},
		{
			name:   "invalid",
			args:   []string{"--log-level=invalid", "set", "ns", "k", "v"},
			expErr: `--log-level: slog: level string "invalid": unknown name`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tctx, cancel, h := newTestContext(t, 5*time.Second)
			defer cancel()

			app, err := newTestApp(tctx)
			h(assert.NoError(t, err))
			app.env.Set("VOIDS_DATASTORE_API_KEY", testAPIKey)

			args := append([]string{"--base-url=" + ts.URL + "/api/v1/"}, tc.args...)
			err = app.Run(args...)
			if tc.expErr != "" {
				h(assert.EqualError(t, err, tc.expErr))
			} else {
				h(assert.NoError(t, err))
			}

			if tc.expLog != "" {
				h(assert.Contains(t, app.stderr.String(), tc.expLog))
			} else {
				h(assert.Equal(t, "", app.stderr.String()))
			}
		})
	}
}
