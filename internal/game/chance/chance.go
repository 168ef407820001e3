// Package chance provides the randomness abstraction used by creature behavior,
// plus weighted picks and range sampling built on top of it.
package chance

// Source is the randomness provider for behavior decisions.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// Option is one weighted candidate for Pick.
type Option struct {
	Tag    string
	Weight float64
}
