package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"go.voidsdatastore.net/voids/app/cli"
	actx "go.voidsdatastore.net/voids/app/context"
	aerrors "go.voidsdatastore.net/voids/app/errors"
)

// App is the application.
type App struct {
	ctx      *actx.Context
	cli      *cli.CLI
	logLevel *slog.LevelVar

	Exit func(int)
}

// New initializes a new application.
func New(opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		Version: version.String(),
		Logger:  slog.Default(),
		UUIDGen: uuid.NewString,
	}
	app := &App{
		ctx:      defaultCtx,
		logLevel: &slog.LevelVar{},
		Exit:     func(int) {},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app, nil
}

// Run parses the given arguments and executes the selected command.
func (app *App) Run(args []string) error {
	c := &cli.CLI{}
	if err := c.Setup(app.ctx, args, app.Exit); err != nil {
		return err
	}
	app.cli = c
	app.logLevel.Set(c.LogLevel)

	return c.Ctx.Run(app.ctx)
}

// FatalIfErrorf terminates the application with an error message if err != nil.
func (app *App) FatalIfErrorf(err error, args ...any) {
	if err == nil {
		return
	}

	var hinted aerrors.WithHint
	if errors.As(err, &hinted) && hinted.Hint() != "" {
		args = append(args, "hint", hinted.Hint())
	}
	var caused aerrors.WithCause
	if errors.As(err, &caused) && caused.Cause() != nil {
		args = append(args, "cause", caused.Cause().Error())
	}

	app.ctx.Logger.Error(err.Error(), args...)
	app.Exit(1)
}
