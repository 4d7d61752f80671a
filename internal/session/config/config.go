package config

import "time"

type Config struct {
	// Незавершенный сценарий сбрасывается после TTL бездействия. 0 - без ограничения.
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}
