package report

import "codeberg.org/mutker/hwhealth/internal/errors"

const (
	ErrInvalidFormat = errors.ErrInvalidFormat
	ErrRender        = errors.ErrorCode("report_render_failed")
)
