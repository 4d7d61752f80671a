package config

import "time"

// Пустой BotToken - транспорт Telegram не запускается.
type Config struct {
	BotToken    string        `env:"BOT_TOKEN"`
	APIURL      string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	PollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"30s"`
}
