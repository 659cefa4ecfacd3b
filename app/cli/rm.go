package cli

import (
	actx "go.voidsdatastore.net/voids/app/context"
)

// The Rm command deletes a key.
type Rm struct {
	Namespace string `arg:"" help:"The namespace the key exists in."`
	Key       string `arg:"" help:"The key to delete."`
}

// Run the rm command.
func (c *Rm) Run(appCtx *actx.Context) error {
	client, err := newClient(appCtx)
	if err != nil {
		return err
	}

	_, err = client.Delete(appCtx.Ctx, c.Namespace, c.Key)
	return err
}
