// Package devserver implements the Voids Datastore wire protocol in
// process, for development and tests. It is not the production datastore:
// values live in a pluggable local store, and deferrals are simulated, with
// results computed immediately and only their delivery delayed behind 202
// acknowledgments and a configurable number of pending status responses.
//
// The zero Config serves every request synchronously from an in-memory
// store with authentication disabled. Latency injection, forced or
// size-triggered deferral, Retry-After hints and the legacy request_id
// acknowledgment field can be enabled to exercise client behavior:
//
//	srv := devserver.New(devserver.Config{
//		APIKey:       "local-key",
//		DeferPut:     true,
//		PendingPolls: 2,
//	}, ":2020")
//	ts := httptest.NewServer(srv.Handler)
//
// The API is mounted under /api/v1, with a heartbeat at /ping.
package devserver
