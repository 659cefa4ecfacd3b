package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	actx "go.voidsdatastore.net/voids/app/context"
	"go.voidsdatastore.net/voids/datastore"
)

// The Get command retrieves and prints the value of a key.
type Get struct {
	Namespace string `arg:"" help:"The namespace the key lives in."`
	Key       string `arg:"" help:"The unique key associated with the value."`
}

// Run the get command.
func (c *Get) Run(appCtx *actx.Context) error {
	client, err := newClient(appCtx)
	if err != nil {
		return err
	}

	val, err := client.Get(appCtx.Ctx, c.Namespace, c.Key)
	if err != nil {
		return err
	}

	return renderValue(appCtx.Stdout, val)
}

// renderValue writes a value in its friendliest form: indented JSON for
// documents, the decoded text for JSON strings, and raw bytes otherwise.
func renderValue(w io.Writer, val datastore.Value) error {
	out := val.Bytes()

	if val.IsJSON() && !val.IsNull() {
		var s string
		if err := val.Decode(&s); err == nil {
			out = []byte(s)
		} else {
			var buf bytes.Buffer
			if err := json.Indent(&buf, out, "", "  "); err == nil {
				out = buf.Bytes()
			}
		}
	}

	_, err := fmt.Fprintf(w, "%s\n", out)
	return err
}
