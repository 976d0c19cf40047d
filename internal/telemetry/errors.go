package telemetry

import (
	"fmt"

	"codeberg.org/mutker/hwhealth/internal/errors"
)

const (
	ErrProviderUnavailable = errors.ErrProviderUnavailable
	ErrNoProvider          = errors.ErrorCode("telemetry_no_provider")
)

// ProviderError reports that one domain's telemetry could not be obtained.
// It is contained to that domain: scoring substitutes the domain fallback.
type ProviderError struct {
	Domain Domain
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s telemetry unavailable: %v", e.Domain, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(d Domain, err error) error {
	return &ProviderError{
		Domain: d,
		Err:    errors.New().Wrap(ErrProviderUnavailable, err),
	}
}
