package report

import "codeberg.org/mutker/mcwatch/internal/errors"

const (
	ErrInvalidConfig  = errors.ErrInvalidConfig
	ErrInvalidWebhook = errors.ErrorCode("report_invalid_webhook")
	ErrPublishFailed  = errors.ErrPublishFailed
	ErrRejected       = errors.ErrorCode("report_rejected")
)
