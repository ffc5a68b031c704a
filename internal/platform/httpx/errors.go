package httpx

import (
	"errors"
	"net/http"

	"github.com/zecadelgado/patp/internal/shared"
)

// RespondError maps cross-cutting domain errors to RFC7807 responses.
// Handlers translate package specific errors before delegating here.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrActorRequired):
		Problem(w, http.StatusUnauthorized, "Actor Required", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
