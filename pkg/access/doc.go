// Package access implements the authorization decision engine: pure
// predicates that combine organizational role, ownership, hierarchy
// membership and explicit grants into read/write/manage decisions for
// documents, contexts and assignment edges.
//
// Every predicate is total for well-formed input: it returns false for any
// resolution failure (missing user, missing entity, malformed ownership
// union) and reserves its error return for infrastructure failures in the
// underlying repository. The HTTP middleware in this package is the one
// layer that distinguishes "not found" from "forbidden"; the predicates
// deliberately do not.
package access
