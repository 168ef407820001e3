package chance

import (
	"time"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged decisions.
// Weighted picks and range samples are logged at debug level; per-tick coin
// flips are not, since they happen every frame.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source {
	return r.src
}

// Pick selects a weighted option and logs the outcome.
//
// Postcondition: same as the package-level Pick.
func (r *Roller) Pick(opts []Option) (string, bool) {
	tag, ok := Pick(r.src, opts)
	r.logger.Debug("weighted pick",
		zap.Int("options", len(opts)),
		zap.String("picked", tag),
		zap.Bool("ok", ok),
	)
	return tag, ok
}

// Between samples a duration uniformly from [lo, hi) and logs it.
func (r *Roller) Between(lo, hi time.Duration) time.Duration {
	d := Between(r.src, lo, hi)
	r.logger.Debug("sampled duration",
		zap.Duration("min", lo),
		zap.Duration("max", hi),
		zap.Duration("value", d),
	)
	return d
}

// Chance reports true with probability p.
func (r *Roller) Chance(p float64) bool {
	return Chance(r.src, p)
}

// Intn returns a value in [0, n) from the underlying source.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}
