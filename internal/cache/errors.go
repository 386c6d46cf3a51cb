package cache

import "errors"

var (
	// ErrSuperseded indicates a fetch resolved after its selection context
	// changed; its result was discarded rather than written.
	ErrSuperseded = errors.New("fetch superseded by context switch")

	// ErrUnknownKind indicates no fetcher is registered for the kind.
	ErrUnknownKind = errors.New("unknown entity kind")

	// ErrNotApplicable indicates the kind declares itself disabled for the
	// current selection context (e.g. product-scoped data with no product).
	ErrNotApplicable = errors.New("entity kind not applicable for selection")
)
