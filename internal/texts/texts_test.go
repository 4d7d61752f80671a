package texts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/texts/config"
)

func TestLoadDefault(t *testing.T) {
	catalog, err := Load(config.Config{})
	require.NoError(t, err)
	require.Equal(t, "📝 Новая заявка", catalog.Menu.NewOrder)
	require.Len(t, catalog.MainMenu(), 4)
	require.Equal(t, []string{"⏳ Длительный ремонт", "✅ Завершен", "❌ Отмена", "🚫 Отказ", "🔙 Назад"}, catalog.StatusMenu())
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.yaml")
	override := "menu:\n  new_order: \"New order\"\nreport_statuses:\n  refused: \"Refused\"\n"
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	catalog, err := Load(config.Config{Path: path})
	require.NoError(t, err)
	require.Equal(t, "New order", catalog.Menu.NewOrder)
	// остальное берется из встроенного каталога
	require.Equal(t, "📋 Мои заявки", catalog.Menu.MyOrders)
	require.Equal(t, "Refused", catalog.ReportStatuses["refused"])
	require.Equal(t, "✅ Завершен", catalog.ReportStatuses["completed"])
}

func TestLoadIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompts:\n  order_time: \"\"\n"), 0o600))

	_, err := Load(config.Config{Path: path})
	require.ErrorIs(t, err, ErrIncomplete)

	_, err = Load(config.Config{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestLoadBadTemplate(t *testing.T) {
	tests := []struct {
		name     string
		override string
	}{
		{name: "missing argument", override: "templates:\n  report_completed: \"#%d %s %s %s\"\n"},
		{name: "extra argument", override: "templates:\n  order_item_completed: \"Сумма: %s\"\n"},
		{name: "wrong type", override: "templates:\n  report_closed: \"#%s %s\"\n"},
		{name: "wrong verb", override: "templates:\n  order_created: \"#%d %s %s %s %d\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "texts.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.override), 0o600))

			_, err := Load(config.Config{Path: path})
			require.ErrorIs(t, err, ErrBadTemplate)
		})
	}

	// порядок аргументов можно менять явными индексами
	path := filepath.Join(t.TempDir(), "texts.yaml")
	override := "templates:\n  report_closed: \"%[2]s: #%[1]d\"\n  cancelled: \"100% отменено\"\n"
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))
	_, err := Load(config.Config{Path: path})
	require.NoError(t, err)
}

func TestParseReportStatus(t *testing.T) {
	catalog := Default()

	tests := []struct {
		text   string
		status model.OrderStatus
		ok     bool
	}{
		{text: "⏳ Длительный ремонт", status: model.OrderStatusLongRepair, ok: true},
		{text: "  ✅ Завершен ", status: model.OrderStatusCompleted, ok: true},
		{text: "❌ отмена", status: model.OrderStatusCancelled, ok: true},
		{text: "refused", status: model.OrderStatusRefused, ok: true},
		{text: "LONG_REPAIR", status: model.OrderStatusLongRepair, ok: true},
		{text: "pending"},
		{text: "🔙 Назад"},
		{text: ""},
	}
	for _, tt := range tests {
		status, ok := catalog.ParseReportStatus(tt.text)
		require.Equal(t, tt.ok, ok, tt.text)
		require.Equal(t, tt.status, status, tt.text)
	}

	require.True(t, catalog.IsCancel("🔙 Назад"))
	require.True(t, catalog.IsCancel("Cancel"))
	require.False(t, catalog.IsCancel("❌ Отмена"))
}
