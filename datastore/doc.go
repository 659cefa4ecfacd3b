// Package datastore provides a client for the Voids Datastore HTTP API.
//
// The datastore holds opaque values addressed by a (namespace, key) pair.
// Reads and writes are synchronous from the caller's point of view, but the
// service itself may defer any operation: instead of the result it responds
// with 202 Accepted and a request id, and the client transparently polls
// /status/{id} until the result is ready. Callers never observe an
// in-between state; every call ends with a value or an error.
//
// A minimal client needs only an API key:
//
//	client, err := datastore.New(datastore.Config{APIKey: "..."})
//	if err != nil {
//		// handle missing credentials
//	}
//	val, err := client.Get(ctx, "myapp", "settings")
//
// The credential can also come from the process environment, resolved in
// order from VOIDS_DATASTORE_API_KEY and API_KEY:
//
//	client, err := datastore.New(datastore.ConfigFromEnv(os.Getenv))
//
// Values keep the distinction the wire protocol makes between JSON
// documents and plain text. On writes, maps, slices, structs and
// json.RawMessage are sent as JSON, strings and numbers as text/plain, and
// nil as a JSON null, which deletes the key. On reads, Value reports which
// form arrived and decodes JSON on demand.
//
// Polling behavior is controlled by PollPolicy. The default strategy waits
// the configured interval between polls and doubles it after every pending
// response, up to a cap, honoring Retry-After headers sent by the service.
// A fixed-interval strategy is also available. A poll that exceeds the
// policy timeout fails with *PollTimeoutError. Sleeps never extend past
// the timeout, so calls return promptly at their deadline.
//
// Status responses whose body is not a JSON object with a "pending" status
// member are treated as the final result, whatever their shape. The
// "status" member name is matched case-sensitively.
//
// The client is safe for concurrent use; all of its configuration is fixed
// at construction and the underlying http.Client is shared.
package datastore
