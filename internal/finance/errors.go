package finance

import "errors"

// Precondition failures. Boundaries match them with errors.Is.
var (
	ErrSameAccount       = errors.New("source and destination accounts must be different")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrNoCategory        = errors.New("no category of the required type exists")
)
