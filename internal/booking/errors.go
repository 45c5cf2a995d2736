// Package booking holds the seat-allocation, validation and pricing
// rules of the ticket shop.  It is deliberately free of persistence
// concerns: callers load the relevant state through the repository
// layer and pass plain values in.  This keeps the rules testable and
// makes the transactional handlers the single place where reads,
// checks and writes are tied together.
package booking

import "errors"

// ValidationError describes a recoverable input problem: an unknown
// seat class, a sold-out cabin, a seat number outside the cabin range
// or one already taken.  Handlers surface the message to the customer
// with a 400 status so the form can be corrected and resubmitted.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AsValidation reports whether err is (or wraps) a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
    var ve *ValidationError
    if errors.As(err, &ve) {
        return ve, true
    }
    return nil, false
}

// ErrInconsistentState signals a defect rather than bad input, e.g. a
// placeholder ticket flagged for reclamation that has no owning
// basket.  It must never be swallowed: handlers log it and return 500.
var ErrInconsistentState = errors.New("inconsistent booking state")
