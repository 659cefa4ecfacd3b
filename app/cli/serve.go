package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	actx "go.voidsdatastore.net/voids/app/context"
	aerrors "go.voidsdatastore.net/voids/app/errors"
	"go.voidsdatastore.net/voids/devserver"
	"go.voidsdatastore.net/voids/devserver/badger"
)

// Serve starts the local development server. It implements the Voids
// Datastore wire protocol, including deferred responses, so clients can be
// exercised without touching the production service.
type Serve struct {
	Address string `help:"[host]:port to listen on" default:":2020"`
	Store   string `enum:"memory,disk" default:"memory" help:"The storage backend."`
	DataDir string `help:"The directory the disk store is kept in. Defaults to a subdirectory of the XDG data home."`

	DeferWrites     bool          `help:"Defer every write behind a 202 acknowledgment."`
	DeferReads      bool          `help:"Defer every read behind a 202 acknowledgment."`
	DeferOver       int           `help:"Defer writes whose body is at least this many bytes."`
	PendingPolls    int           `default:"2" help:"The number of pending status responses before a deferred result resolves."`
	RetryAfter      time.Duration `help:"The Retry-After value sent with pending status responses."`
	Latency         time.Duration `help:"An artificial delay added to every request."`
	LegacyRequestID bool          `help:"Acknowledge deferred requests with the legacy request_id field."`
}

// Run the serve command. The server shuts down gracefully when the main
// context is canceled.
func (c *Serve) Run(appCtx *actx.Context) error {
	cfg := devserver.Config{
		APIKey:               appCtx.Datastore.APIKey,
		DeferPut:             c.DeferWrites,
		DeferGet:             c.DeferReads,
		DeferOver:            c.DeferOver,
		PendingPolls:         c.PendingPolls,
		RetryAfter:           c.RetryAfter,
		LegacyRequestIDField: c.LegacyRequestID,
		Latency:              c.Latency,
		NewRequestID:         appCtx.UUIDGen,
		Logger:               appCtx.Logger,
	}

	if c.Store == "disk" {
		dataDir := c.DataDir
		if dataDir == "" {
			dataDir = filepath.Join(xdg.DataHome, "voids", "store")
		}
		if appCtx.FS.Name() != "MemoryFileSystem" {
			if err := appCtx.FS.MkdirAll(dataDir, 0o700); err != nil {
				return aerrors.NewRuntimeError("failed creating the data directory", err, "")
			}
		}

		store, err := badger.Open(dataDir)
		if err != nil {
			return aerrors.NewRuntimeError("failed opening the disk store", err, "")
		}
		cfg.Store = store
	}

	srv := devserver.New(cfg, c.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return aerrors.NewRuntimeError("failed starting the dev server", err, "")
	case <-appCtx.Ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutCtx)
	if cerr := srv.Close(); err == nil {
		err = cerr
	}
	return err
}
