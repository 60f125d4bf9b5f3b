package service

// ValidationError signals that caller input violates a business rule:
// a bad category reference, insufficient stock, a non-positive quantity,
// out-of-range pagination, or an inverted price range.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError signals a uniqueness violation on ISBN or category name.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func validationErr(reason string) error {
	return &ValidationError{Reason: reason}
}

func conflictErr(reason string) error {
	return &ConflictError{Reason: reason}
}
