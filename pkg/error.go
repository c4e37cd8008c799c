package pkg

import "strings"

// Error collects independent failures, such as one per invalid entry of a
// file, so they can be reported together.
type Error []error

// MakeError returns the non-nil errors of errs, flattening any that are
// themselves an [Error]. It returns nil if none remain.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case Error:
			e = append(e, err...)
		default:
			e = append(e, err)
		}
	}

	return e
}

// Append returns e with err added, unless err is nil.
func (e Error) Append(err error) Error { return append(e, MakeError(err)...) }

// Err returns e as an error, or nil if it is empty.
func (e Error) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// Error returns one line per failure.
func (e Error) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "\n")
}

// Unwrap returns the collected failures.
func (e Error) Unwrap() []error { return e }
