package model

import "errors"

// Core error taxonomy. Callers wrap these with fmt.Errorf("%w: ...") to add
// detail and match with errors.Is; apierror maps them to HTTP statuses.
var (
	ErrValidation          = errors.New("validation error")
	ErrSequenceUnavailable = errors.New("sequence unavailable")
	ErrInvalidPricing      = errors.New("invalid pricing")
	ErrNotAMembershipOrder = errors.New("not a membership order")
	ErrPeriodAlreadyOpen   = errors.New("period already open")
	ErrNoOpenPeriod        = errors.New("no open period")

	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderCanceled  = errors.New("order already canceled")
	ErrPeriodNotFound = errors.New("period not found")
)
