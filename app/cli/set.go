package cli

import (
	"encoding/json"

	actx "go.voidsdatastore.net/voids/app/context"
)

// The Set command stores the value of a key.
type Set struct {
	Namespace string `arg:"" help:"The namespace to store the value in."`
	Key       string `arg:"" help:"The unique key that identifies the value."`
	Value     string `arg:"" help:"The value. Valid JSON is stored as JSON, anything else as plain text, and null deletes the key."`
}

// Run the set command.
func (c *Set) Run(appCtx *actx.Context) error {
	client, err := newClient(appCtx)
	if err != nil {
		return err
	}

	_, err = client.Update(appCtx.Ctx, c.Namespace, c.Key, parseValue(c.Value))
	return err
}

// parseValue decides how a raw command line value is sent: valid JSON is
// passed through verbatim, anything else becomes a plain string.
func parseValue(s string) any {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}
