package devserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// KeyGet returns the value associated with the received key, or defers it
// behind a 202 acknowledgment when reads are deferred.
func (s *Server) KeyGet(w http.ResponseWriter, r *http.Request) {
	namespace, key, err := keyParams(r)
	if err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	res := s.lookup(namespace, key)
	if s.cfg.DeferGet {
		s.accept(w, r, res)
		return
	}

	writeResult(w, res)
}

// KeySet stores the received value, deleting the key when the value is a
// JSON null. Writes are deferred behind a 202 acknowledgment when
// configured, or when the body meets the deferral size threshold.
func (s *Server) KeySet(w http.ResponseWriter, r *http.Request) {
	namespace, key, err := keyParams(r)
	if err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		_ = render.Render(w, r, errBadRequest(err))
		return
	}

	res := s.apply(namespace, key, body, r.Header.Get("Content-Type"))
	if s.cfg.DeferPut || (s.cfg.DeferOver > 0 && len(body) >= s.cfg.DeferOver) {
		s.accept(w, r, res)
		return
	}

	writeResult(w, res)
}

// Status reports on a deferred request: pending while polls remain, then
// the recorded result, after which the id is forgotten.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	res, pending, ok := s.pending.poll(id)
	if !ok {
		_ = render.Render(w, r, errNotFound(fmt.Errorf("unknown request id '%s'", id)))
		return
	}

	if pending {
		if s.cfg.RetryAfter > 0 {
			w.Header().Set("Retry-After",
				strconv.FormatFloat(s.cfg.RetryAfter.Seconds(), 'f', -1, 64))
		}
		render.JSON(w, r, map[string]string{"status": "pending"})
		return
	}

	writeResult(w, res)
}

// lookup reads a key from the store and records the outcome.
func (s *Server) lookup(namespace, key string) result {
	entry, ok, err := s.store.Get(namespace, key)
	if err != nil {
		return errorResult(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return errorResult(http.StatusNotFound, fmt.Sprintf(
			"key '%s' doesn't exist in the '%s' namespace", key, namespace))
	}

	return result{status: http.StatusOK, body: entry.Data, json: entry.JSON}
}

// apply performs a write and records the outcome. A JSON null body deletes
// the key; the stored value is echoed back otherwise.
func (s *Server) apply(namespace, key string, body []byte, contentType string) result {
	isJSON := strings.Contains(contentType, "json")
	if contentType == "" {
		isJSON = json.Valid(body)
	}

	if isJSON && string(bytes.TrimSpace(body)) == "null" {
		if err := s.store.Delete(namespace, key); err != nil {
			return errorResult(http.StatusInternalServerError, err.Error())
		}
		return result{status: http.StatusOK, body: []byte("null"), json: true}
	}

	if err := s.store.Set(namespace, key, Entry{Data: body, JSON: isJSON}); err != nil {
		return errorResult(http.StatusInternalServerError, err.Error())
	}

	return result{status: http.StatusOK, body: body, json: isJSON}
}

// accept registers a deferred result and acknowledges it with 202 and the
// request id.
func (s *Server) accept(w http.ResponseWriter, r *http.Request, res result) {
	id := s.pending.add(res, s.cfg.PendingPolls)

	field := "requestId"
	if s.cfg.LegacyRequestIDField {
		field = "request_id"
	}

	s.logger.Debug("deferred request", "request_id", id,
		"polls", s.cfg.PendingPolls)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{field: id})
}

// writeResult replays a recorded outcome, preserving the content kind the
// value was stored with.
func writeResult(w http.ResponseWriter, res result) {
	contentType := "text/plain; charset=utf-8"
	if res.json {
		contentType = "application/json; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(res.status)
	_, _ = w.Write(res.body)
}

// errorResult shapes an error into the JSON envelope the API uses.
func errorResult(status int, msg string) result {
	body, _ := json.Marshal(&errResponse{
		StatusCode: status,
		Status:     http.StatusText(status),
		Error:      msg,
	})
	return result{status: status, body: body, json: true}
}

// keyParams extracts and unescapes the namespace and key path segments.
func keyParams(r *http.Request) (namespace, key string, err error) {
	namespace, err = url.PathUnescape(chi.URLParam(r, "namespace"))
	if err != nil || namespace == "" {
		return "", "", errors.New("namespace not provided")
	}
	key, err = url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		return "", "", errors.New("key not provided")
	}

	return namespace, key, nil
}

// requireAPIKey rejects requests whose Authorization header doesn't carry
// the configured API key.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != s.cfg.APIKey {
			_ = render.Render(w, r, errUnauthorized(errors.New("invalid API key")))
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
