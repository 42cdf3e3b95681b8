package access

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/docvault/pkg/content"
	"github.com/platinummonkey/docvault/pkg/contextkeys"
	"github.com/platinummonkey/docvault/pkg/httputil"
	"github.com/platinummonkey/docvault/pkg/org"
)

// Mode selects which document predicate the middleware applies.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// DocumentIDVar is the mux route variable the middleware reads.
const DocumentIDVar = "documentId"

// RequireDocumentAccess returns middleware that authorizes access to the
// document named by the route's documentId variable. The outcome ordering
// is fixed and load-bearing: 401 when no authenticated user is on the
// request, 404 when the document does not exist (or is soft-deleted under
// read mode), 403 when the predicate denies. A missing document yields 404
// even for a user who would otherwise be denied; an existing document
// never reveals more than the 403/404 distinction defined here.
//
// On success the loaded projection is stashed in the request context
// (contextkeys.DocumentKey) so the handler avoids a second load.
func (e *Engine) RequireDocumentAccess(mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			documentID := mux.Vars(r)[DocumentIDVar]
			if documentID == "" {
				httputil.WriteErrorMessage(w, http.StatusBadRequest, "documentId is required")
				return
			}

			user, ok := r.Context().Value(contextkeys.UserKey).(*org.User)
			if !ok || user == nil {
				httputil.WriteErrorMessage(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			doc, err := e.repo.LoadDocumentProjection(r.Context(), documentID)
			if err != nil {
				httputil.WriteInternalError(w, err)
				return
			}
			if doc == nil || (mode == ModeRead && doc.Deleted()) {
				httputil.WriteNotFoundError(w, "document not found")
				return
			}

			var allowed bool
			if mode == ModeRead {
				allowed, err = e.CanReadDocument(r.Context(), user.ID, doc)
			} else {
				allowed, err = e.CanWriteDocument(r.Context(), user.ID, doc)
			}
			if err != nil {
				httputil.WriteInternalError(w, err)
				return
			}
			if !allowed {
				httputil.WriteErrorMessage(w, http.StatusForbidden, "no access to this document")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextkeys.WithDocument(r.Context(), doc)))
		})
	}
}

// DocumentFromContext returns the projection stashed by
// RequireDocumentAccess, or nil when the middleware did not run.
func DocumentFromContext(r *http.Request) *content.DocumentProjection {
	doc, _ := r.Context().Value(contextkeys.DocumentKey).(*content.DocumentProjection)
	return doc
}
