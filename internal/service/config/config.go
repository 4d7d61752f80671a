package config

import "time"

type Config struct {
	// Ограничение на каждый вызов хранилища
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}
