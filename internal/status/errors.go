package status

import "codeberg.org/mutker/mcwatch/internal/errors"

const (
	ErrInvalidAddress  = errors.ErrorCode("status_invalid_address")
	ErrInvalidResponse = errors.ErrInvalidSample
	ErrCheckFailed     = errors.ErrStatusCheck
	ErrLocateFailed    = errors.ErrorCode("status_locate_failed")
)
