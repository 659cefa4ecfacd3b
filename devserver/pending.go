package devserver

import "sync"

// result is a recorded handler outcome, replayed by the status endpoint
// once a deferred request resolves.
type result struct {
	status int
	body   []byte
	json   bool
}

// pendingRequest tracks one deferred request until its result is claimed.
type pendingRequest struct {
	result result
	polls  int // pending responses left to serve
}

// pendingSet holds deferred requests by id. Results are computed when the
// request is accepted; the set only controls when they become visible.
type pendingSet struct {
	mu    sync.Mutex
	m     map[string]*pendingRequest
	newID func() string
}

func newPendingSet(newID func() string) *pendingSet {
	return &pendingSet{m: make(map[string]*pendingRequest), newID: newID}
}

// add registers a deferred result and returns its request id. The result
// stays pending for the given number of status polls.
func (p *pendingSet) add(res result, polls int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.newID()
	p.m[id] = &pendingRequest{result: res, polls: polls}
	return id
}

// poll advances the deferred request with the given id. It reports whether
// the id is known and whether the request is still pending; once resolved,
// the result is returned and the id is forgotten.
func (p *pendingSet) poll(id string) (res result, pending, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	req, ok := p.m[id]
	if !ok {
		return result{}, false, false
	}

	if req.polls > 0 {
		req.polls--
		return result{}, true, true
	}

	delete(p.m, id)
	return req.result, false, true
}
