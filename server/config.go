package server

import (
	"time"

	"github.com/tracktitans/citysim/simulation"
)

// DefaultAddr and DefaultPort match the teacher's server defaults, kept as
// the fallback when no config file overrides them.
const (
	DefaultAddr = "localhost"
	DefaultPort = "22222"

	// MaxHubStartupTime bounds how long Run waits for the HTTP server to
	// shut down gracefully once its context is cancelled.
	MaxHubStartupTime = 5 * time.Second
)

// Config is the YAML-loadable configuration for a citysimd process: where to
// bind, which map/edits/seed to build the Sim from, and how fast to tick it.
type Config struct {
	Addr string `yaml:"addr"`
	Port string `yaml:"port"`

	Flags simulation.SimFlags `yaml:"sim"`

	// TickInterval is how often the server advances simulated time while a
	// Sim is running, and TickDuration is how much simulated time each tick
	// advances (together these implement the teacher's TimeFactor knob).
	TickInterval time.Duration `yaml:"tick_interval"`
	TickDuration simulation.Duration `yaml:"tick_duration"`
}

// DefaultConfig returns a Config with the teacher's defaults, used whenever
// no YAML file is supplied.
func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		Port:         DefaultPort,
		TickInterval: 200 * time.Millisecond,
		TickDuration: simulation.DurationFromSeconds(1),
	}
}
