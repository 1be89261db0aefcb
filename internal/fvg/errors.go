package fvg

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientData is returned by bulk Calculate when fewer than three
// candles are supplied. Refusing to run is deliberate: an empty result would
// be indistinguishable from "analyzed and found nothing".
var ErrInsufficientData = errors.New("fvg: at least 3 candles required")

// ErrInvalidConfig wraps all construction-time configuration failures.
var ErrInvalidConfig = errors.New("fvg: invalid config")

// CandleError reports a single malformed candle. It is recoverable: the
// candle is skipped and the rest of the stream keeps processing.
type CandleError struct {
	Timestamp time.Time
	Reason    string
}

func (e *CandleError) Error() string {
	return fmt.Sprintf("fvg: candle at %s rejected: %s", e.Timestamp.Format(time.RFC3339), e.Reason)
}

func configErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, a...))
}
