// checkconfig проверяет окружение перед запуском бота: токен Telegram,
// доступность базы данных и применение миграций, каталог текстов.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/iurnickita/repairdesk/internal/config"
	"github.com/iurnickita/repairdesk/internal/store"
	"github.com/iurnickita/repairdesk/internal/telegram"
	"github.com/iurnickita/repairdesk/internal/texts"
)

const checkTimeout = 15 * time.Second

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ config:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	ok := true
	for _, check := range []struct {
		name string
		run  func(ctx context.Context, cfg config.Config) (string, error)
	}{
		{name: "telegram", run: checkTelegram},
		{name: "database", run: checkDatabase},
		{name: "texts", run: checkTexts},
	} {
		detail, err := check.run(ctx, cfg)
		if err != nil {
			ok = false
			fmt.Printf("❌ %s: %v\n", check.name, err)
			continue
		}
		fmt.Printf("✅ %s: %s\n", check.name, detail)
	}

	if !ok {
		os.Exit(1)
	}
}

func checkTelegram(ctx context.Context, cfg config.Config) (string, error) {
	client, err := telegram.NewClient(cfg.Telegram)
	if err != nil {
		return "", err
	}
	me, err := client.GetMe(ctx)
	if err != nil {
		return "", err
	}
	return "@" + me.UserName, nil
}

func checkDatabase(ctx context.Context, cfg config.Config) (string, error) {
	// NewStore применяет недостающие миграции
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return "", err
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		return "", err
	}
	return cfg.Store.Driver + " " + cfg.Store.DBDsn, nil
}

func checkTexts(_ context.Context, cfg config.Config) (string, error) {
	if _, err := texts.Load(cfg.Texts); err != nil {
		return "", err
	}
	if cfg.Texts.Path == "" {
		return "embedded catalog", nil
	}
	return cfg.Texts.Path, nil
}
