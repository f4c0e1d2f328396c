package domain

import "errors"

// Closed error taxonomy for the pipeline. Transient failures are retried by
// the component that saw them; data-quality failures become failed results;
// fatal configuration errors abort the whole batch.
var (
	// ErrFatalConfig indicates the classifier's credentials or quota are
	// invalid for all future calls (401/402 from the API). Never retried,
	// propagated past the per-organization boundary.
	ErrFatalConfig = errors.New("fatal configuration error")

	// ErrNoWebsiteFound is returned when every resolution fallback is exhausted.
	ErrNoWebsiteFound = errors.New("no website found")

	// ErrContentTooShort is returned when extraction produced less than the
	// minimum usable text.
	ErrContentTooShort = errors.New("extracted content too short")

	// ErrUnparseableAnswer is returned when the classification answer matches
	// no known yes/no vocabulary.
	ErrUnparseableAnswer = errors.New("unparseable classification answer")
)

// IsFatalConfig reports whether err is (or wraps) a fatal configuration error.
func IsFatalConfig(err error) bool {
	return errors.Is(err, ErrFatalConfig)
}
