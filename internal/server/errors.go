package server

import "codeberg.org/mutker/hwhealth/internal/errors"

const (
	ErrServe           = errors.ErrorCode("server_failed")
	ErrInvalidLimit    = errors.ErrorCode("invalid_limit")
	ErrHistoryDisabled = errors.ErrorCode("history_disabled")
)
