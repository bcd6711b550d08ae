package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	if err := fetcher.FetchSnapshot(ctx, runID); err != nil {
//	    return errors.Wrap(err, "poll run")
//	}
//
// The original chain is preserved so errors.Is(err, errors.ErrRunNotFound)
// keeps working for callers.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
//
//	return errors.Wrapf(err, "fetch logs for job %d", jobID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Classify wraps cause with a sentinel so that errors.Is matches both.
// It returns nil if cause is nil.
func Classify(sentinel, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
