package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	handlerConfig "github.com/iurnickita/repairdesk/internal/handler/config"
	loggerConfig "github.com/iurnickita/repairdesk/internal/logger/config"
	serviceConfig "github.com/iurnickita/repairdesk/internal/service/config"
	sessionConfig "github.com/iurnickita/repairdesk/internal/session/config"
	storeConfig "github.com/iurnickita/repairdesk/internal/store/config"
	telegramConfig "github.com/iurnickita/repairdesk/internal/telegram/config"
	textsConfig "github.com/iurnickita/repairdesk/internal/texts/config"
)

type Config struct {
	Handler  handlerConfig.Config
	Service  serviceConfig.Config
	Store    storeConfig.Config
	Logger   loggerConfig.Config
	Session  sessionConfig.Config
	Texts    textsConfig.Config
	Telegram telegramConfig.Config
}

// GetConfig: значения по умолчанию < переменные окружения < флаги.
func GetConfig() (Config, error) {
	return parse(os.Args[0], os.Args[1:])
}

func parse(name string, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	// DATABASE_PATH - путь к файлу SQLite, как в первых версиях бота
	if path, ok := os.LookupEnv("DATABASE_PATH"); ok && os.Getenv("DATABASE_URI") == "" {
		cfg.Store.DBDsn = path
	}

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringVarP(&cfg.Handler.ServerAddr, "address", "a", cfg.Handler.ServerAddr, "HTTP address (empty disables)")
	flags.StringVarP(&cfg.Logger.LogLevel, "log-level", "l", cfg.Logger.LogLevel, "log level")
	flags.StringVarP(&cfg.Store.Driver, "database-driver", "s", cfg.Store.Driver, "sqlite or postgres")
	flags.StringVarP(&cfg.Store.DBDsn, "database", "d", cfg.Store.DBDsn, "database DSN or SQLite file path")
	flags.StringVarP(&cfg.Telegram.BotToken, "token", "t", cfg.Telegram.BotToken, "Telegram bot token")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
