package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// pollStatus polls /status/{requestID} until the deferred request resolves,
// the policy timeout elapses, or ctx is canceled. The deadline is computed
// once up front; each request is bounded by the smaller of the request
// timeout and the remaining budget, and sleeps are capped at the remaining
// budget so the call returns promptly once the deadline passes.
func (c *Client) pollStatus(ctx context.Context, requestID string, pol PollPolicy) (Value, error) {
	u := c.statusURL(requestID)
	deadline := time.Now().Add(pol.Timeout)
	interval := pol.Interval

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Value{}, &PollTimeoutError{RequestID: requestID, Timeout: pol.Timeout}
		}

		timeout := min(c.requestTimeout, remaining)
		status, raw, header, err := c.roundTrip(ctx, http.MethodGet, u, nil, "", timeout)
		if err != nil {
			return Value{}, &Error{Op: opStatus, Err: err}
		}
		if status < 200 || status > 299 {
			return Value{}, &Error{Op: opStatus, StatusCode: status, Message: errorMessage(raw)}
		}
		if !isPending(raw) {
			return NewValue(raw), nil
		}

		wait, next := nextWait(pol, interval, header)
		interval = next
		wait = min(wait, time.Until(deadline))

		c.logger.Debug("request still pending",
			"request_id", requestID, "wait", wait)

		if err := sleep(ctx, wait); err != nil {
			return Value{}, &Error{Op: opStatus, Err: err}
		}
	}
}

// nextWait returns the delay before the next poll, and the interval to use
// after it. A Retry-After header overrides the current interval for this
// iteration only. Under PollBackoff the interval doubles each time, capped
// at the policy maximum; under PollFixed it never changes.
func nextWait(pol PollPolicy, interval time.Duration, header http.Header) (wait, next time.Duration) {
	wait = interval
	if ra, ok := retryAfter(header); ok {
		wait = ra
	}

	next = interval
	if pol.Strategy == PollBackoff {
		next = min(interval*2, pol.MaxInterval)
	}

	return wait, next
}

// isPending reports whether a status response body is a JSON object whose
// "status" member is the string "pending". The member name is matched
// case-sensitively; any other body is a final result.
func isPending(body []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return false
	}

	raw, ok := obj["status"]
	if !ok {
		return false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}

	return s == "pending"
}

// retryAfter parses a Retry-After header as a number of seconds, which may
// be fractional. Absent or unparseable values report false, in which case
// the current poll interval applies.
func retryAfter(header http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}

	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0, false
	}

	return time.Duration(secs * float64(time.Second)), true
}

// sleep pauses for d, returning early with the context error if ctx is
// canceled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
