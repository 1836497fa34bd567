// Package config holds the tunables pkg/ccu's Solver and cmd/ccu share:
// which strategy to run, how many iterations to allow before giving up,
// and how long to let any single SAT oracle call run.
package config

import "github.com/spf13/pflag"

// Config is passed by value into ccu.NewSolver. It is a struct rather than
// package-level flag vars since ccu is a library embeddable by more than
// one process.
type Config struct {
	// Strategy selects "lazy" or "table". Anything else is rejected by
	// cmd/ccu before any solving starts.
	Strategy string
	// MaxIterations bounds the solve loop's guesses (lazy) or unfolding
	// rounds (table). 0 means unbounded.
	MaxIterations int
	// SatTimeoutMs is handed to the oracle's SetTimeoutMs before each
	// Solve. The gini-backed oracle ignores it, so it does not bound any
	// SAT oracle call.
	SatTimeoutMs int
	// Debug raises the logger to debug level.
	Debug bool
}

// Default returns the conservative defaults: lazy strategy, no iteration
// or timeout bound.
func Default() Config {
	return Config{Strategy: "lazy"}
}

// RegisterFlags binds c's fields onto fs, pflag style.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Strategy, "strategy", c.Strategy, "solve strategy: lazy or table")
	fs.IntVar(&c.MaxIterations, "max-iterations", c.MaxIterations, "bound on solve iterations/rounds (0 = unbounded)")
	fs.IntVar(&c.SatTimeoutMs, "sat-timeout-ms", c.SatTimeoutMs, "per-call SAT oracle timeout in milliseconds (0 = unbounded)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
}
