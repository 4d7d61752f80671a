package config

import "time"

type Config struct {
	ServerAddr string `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	// Сколько ждать завершения обрабатываемых запросов при остановке
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
