package cli

import (
	"errors"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"

	actx "go.voidsdatastore.net/voids/app/context"
	aerrors "go.voidsdatastore.net/voids/app/errors"
	"go.voidsdatastore.net/voids/datastore"
)

// CLI is the command line interface of voids.
type CLI struct {
	Ctx *kong.Context `kong:"-"`

	Get     Get     `kong:"cmd,help='Get the value of a key.'"`
	Set     Set     `kong:"cmd,help='Set the value of a key.'"`
	Rm      Rm      `kong:"cmd,help='Delete a key.'"`
	Lb      Lb      `kong:"cmd,help='Manage leaderboards.'"`
	Serve   Serve   `kong:"cmd,help='Start a local development server.'"`
	Version Version `kong:"cmd,help='Print the app version.'"`

	APIKey         string        `kong:"help='The Voids Datastore API key. Taken from the VOIDS_DATASTORE_API_KEY or API_KEY environment variables if not set.'"`
	BaseURL        string        `kong:"help='The base URL of the datastore API. The production endpoint is used if not set.'"`
	RequestTimeout time.Duration `kong:"default='10s',help='The timeout of individual HTTP requests.'"`
	PollInterval   time.Duration `kong:"default='5s',help='The initial wait between status polls of deferred requests.'"`
	PollTimeout    time.Duration `kong:"default='60s',help='The total time budget for resolving a deferred request.'"`
	PollStrategy   string        `kong:"enum='backoff,fixed',default='backoff',help='The wait strategy between status polls.'"`
	LogLevel       slog.Level    `kong:"default='info',help='Set the app logging level.'"`
}

// Setup parses the command-line interface and resolves the datastore client
// configuration from the environment and any flag overrides.
func (c *CLI) Setup(appCtx *actx.Context, args []string, exit func(int)) error {
	parser, err := kong.New(c,
		kong.Name("voids"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Writers(appCtx.Stdout, appCtx.Stderr),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	c.Ctx = kctx

	cfg := datastore.ConfigFromEnv(appCtx.Env.Get)
	if c.APIKey != "" {
		cfg.APIKey = c.APIKey
	}
	cfg.BaseURL = c.BaseURL
	cfg.RequestTimeout = c.RequestTimeout
	cfg.Poll = datastore.PollPolicy{
		Strategy: datastore.PollStrategy(c.PollStrategy),
		Interval: c.PollInterval,
		Timeout:  c.PollTimeout,
	}
	cfg.Logger = appCtx.Logger
	appCtx.Datastore = cfg

	return nil
}

// newClient builds a datastore client from the resolved configuration.
func newClient(appCtx *actx.Context) (*datastore.Client, error) {
	client, err := datastore.New(appCtx.Datastore)
	if err != nil {
		if errors.Is(err, datastore.ErrAPIKeyMissing) {
			return nil, aerrors.NewRuntimeError("failed creating datastore client", err,
				"Set the VOIDS_DATASTORE_API_KEY environment variable, or pass the --api-key option.")
		}
		return nil, err
	}

	return client, nil
}
