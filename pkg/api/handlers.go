package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/storage"
)

// writeStoreError maps storage sentinel errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFoundError(w, "not found")
	case errors.Is(err, storage.ErrConflict):
		httputil.WriteConflict(w, "conflict")
	default:
		httputil.WriteInternalError(w, err)
	}
}

// authorize folds a permission decision into the response: 500 on engine
// error, 403 on denial. Returns true when the request may proceed.
func authorize(w http.ResponseWriter, allowed bool, err error) bool {
	if err != nil {
		httputil.WriteInternalError(w, err)
		return false
	}
	if !allowed {
		httputil.WriteForbidden(w, "forbidden")
		return false
	}
	return true
}
