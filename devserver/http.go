package devserver

import (
	"net/http"

	"github.com/go-chi/render"
)

// errResponse is the JSON error envelope. The error field is what clients
// surface in their messages.
type errResponse struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

func (e *errResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	if e.Status == "" {
		e.Status = http.StatusText(e.StatusCode)
	}
	return nil
}

func errBadRequest(err error) render.Renderer {
	return &errResponse{
		StatusCode: http.StatusBadRequest,
		Error:      err.Error(),
	}
}

func errUnauthorized(err error) render.Renderer {
	return &errResponse{
		StatusCode: http.StatusUnauthorized,
		Error:      err.Error(),
	}
}

func errNotFound(err error) render.Renderer {
	return &errResponse{
		StatusCode: http.StatusNotFound,
		Error:      err.Error(),
	}
}
