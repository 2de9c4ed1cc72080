package slot

import (
	"fmt"

	"github.com/yola1107/kratos/v2/errors"
)

var (
	// ErrInvalidConfig is returned for any game definition or condition table that cannot be used.
	ErrInvalidConfig = errors.BadRequest("INVALID_CONFIG", "invalid game config")
	// ErrCalibration is returned when a bucket predicate or a forced draw cannot be satisfied
	// within its iteration cap.
	ErrCalibration = errors.InternalServer("CALIBRATION_FAILED", "bucket cannot be satisfied")
	// ErrUnknownBetMode is returned when a simulation names a bet mode that is not declared.
	ErrUnknownBetMode = errors.NotFound("UNKNOWN_BET_MODE", "bet mode not found")
)

func configErrorf(format string, args ...any) error {
	return ErrInvalidConfig.WithCause(fmt.Errorf(format, args...))
}

func calibrationErrorf(format string, args ...any) error {
	return ErrCalibration.WithCause(fmt.Errorf(format, args...))
}
