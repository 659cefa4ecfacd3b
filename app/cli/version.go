package cli

import (
	"fmt"

	actx "go.voidsdatastore.net/voids/app/context"
)

// The Version command prints the full app version.
type Version struct{}

// Run the version command.
func (c *Version) Run(appCtx *actx.Context) error {
	fmt.Fprintln(appCtx.Stdout, appCtx.Version)
	return nil
}
