package domain

import "errors"

// Stage error kinds. Callers match them with errors.Is; the failing
// boundary wraps the cause as fmt.Errorf("%w: %w", ErrX, err).
var (
	// ErrInitialization signals missing credentials or an unreachable service at startup.
	ErrInitialization = errors.New("initialization failed")
	// ErrEmbedding signals that the query could not be embedded.
	ErrEmbedding = errors.New("embedding failed")
	// ErrRetrieval signals a failed vector index query.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrRerank signals a failed rerank call.
	ErrRerank = errors.New("rerank failed")
	// ErrMalformedResponse signals an upstream response of unexpected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrOutput signals that results could not be written.
	ErrOutput = errors.New("output failed")
	// ErrNotFound signals a missing history record.
	ErrNotFound = errors.New("not found")
)
