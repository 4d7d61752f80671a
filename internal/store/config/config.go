package config

// Driver: sqlite | postgres. Для sqlite DBDsn - путь к файлу.
type Config struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DBDsn  string `env:"DATABASE_URI" envDefault:"orders.db"`
}
