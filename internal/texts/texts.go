package texts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/texts/config"
)

//go:embed texts.yaml
var defaults []byte

type Catalog struct {
	Menu           Menu              `yaml:"menu"`
	ReportStatuses map[string]string `yaml:"report_statuses"`
	Cancel         string            `yaml:"cancel"`
	StatusNames    map[string]string `yaml:"status_names"`
	StatusEmoji    map[string]string `yaml:"status_emoji"`
	Prompts        Prompts           `yaml:"prompts"`
	Errors         Errors            `yaml:"errors"`
	Templates      Templates         `yaml:"templates"`
}

type Menu struct {
	NewOrder        string `yaml:"new_order"`
	MyOrders        string `yaml:"my_orders"`
	CompletedOrders string `yaml:"completed_orders"`
	Report          string `yaml:"report"`
}

type Prompts struct {
	Welcome              string `yaml:"welcome"`
	OrderAddress         string `yaml:"order_address"`
	OrderTime            string `yaml:"order_time"`
	OrderEquipment       string `yaml:"order_equipment"`
	OrderProblem         string `yaml:"order_problem"`
	ReportOrderID        string `yaml:"report_order_id"`
	ReportStatus         string `yaml:"report_status"`
	ReportTotalAmount    string `yaml:"report_total_amount"`
	ReportCostPrice      string `yaml:"report_cost_price"`
	ReportAgreedAmount   string `yaml:"report_agreed_amount"`
	ReportCompletionDate string `yaml:"report_completion_date"`
	ReportCompletionTime string `yaml:"report_completion_time"`
	ReportWhatToDo       string `yaml:"report_what_to_do"`
}

type Errors struct {
	Empty         string `yaml:"empty"`
	NotNumber     string `yaml:"not_number"`
	NotOrderID    string `yaml:"not_order_id"`
	OrderNotFound string `yaml:"order_not_found"`
	UnknownStatus string `yaml:"unknown_status"`
	StoreFailed   string `yaml:"store_failed"`
	ListFailed    string `yaml:"list_failed"`
	FlowActive    string `yaml:"flow_active"`
	UseMenu       string `yaml:"use_menu"`
	Expired       string `yaml:"expired"`
}

type Templates struct {
	OrderCreated        string `yaml:"order_created"`
	ReportCompleted     string `yaml:"report_completed"`
	ReportLongRepair    string `yaml:"report_long_repair"`
	ReportClosed        string `yaml:"report_closed"`
	Cancelled           string `yaml:"cancelled"`
	OrdersHeader        string `yaml:"orders_header"`
	CompletedHeader     string `yaml:"completed_header"`
	OrdersEmpty         string `yaml:"orders_empty"`
	CompletedEmpty      string `yaml:"completed_empty"`
	OrderItem           string `yaml:"order_item"`
	OrderItemLongRepair string `yaml:"order_item_long_repair"`
	OrderItemCompleted  string `yaml:"order_item_completed"`
}

var (
	ErrIncomplete  = errors.New("texts catalog is incomplete")
	ErrBadTemplate = errors.New("texts template does not match its arguments")
)

// reportStatusOrder - порядок кнопок выбора статуса.
var reportStatusOrder = []model.OrderStatus{
	model.OrderStatusLongRepair,
	model.OrderStatusCompleted,
	model.OrderStatusCancelled,
	model.OrderStatusRefused,
}

// Load читает встроенный каталог и, если задан путь, накладывает поверх него файл.
func Load(cfg config.Config) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(defaults, &catalog); err != nil {
		return nil, fmt.Errorf("embedded texts: %w", err)
	}

	if cfg.Path != "" {
		data, err := os.ReadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("read texts: %w", err)
		}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("parse texts %s: %w", cfg.Path, err)
		}
	}

	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Default - встроенный каталог. Паникует только при битом texts.yaml.
func Default() *Catalog {
	catalog, err := Load(config.Config{})
	if err != nil {
		panic(err)
	}
	return catalog
}

func (c *Catalog) validate() error {
	for _, group := range []any{c.Menu, c.Prompts, c.Errors, c.Templates} {
		v := reflect.ValueOf(group)
		for i := 0; i < v.NumField(); i++ {
			if v.Field(i).String() == "" {
				return fmt.Errorf("%w: %s.%s", ErrIncomplete, v.Type().Name(), v.Type().Field(i).Name)
			}
		}
	}
	if c.Cancel == "" {
		return fmt.Errorf("%w: cancel", ErrIncomplete)
	}
	for _, status := range reportStatusOrder {
		if c.ReportStatuses[string(status)] == "" {
			return fmt.Errorf("%w: report_statuses.%s", ErrIncomplete, status)
		}
	}
	return c.validateTemplates()
}

// validateTemplates подставляет фиктивные аргументы в шаблоны: fmt помечает
// лишние, недостающие и неподходящие по типу аргументы как "%!".
func (c *Catalog) validateTemplates() error {
	const id = int64(1)
	for name, rendered := range map[string]string{
		"order_created":          fmt.Sprintf(c.Templates.OrderCreated, id, "", "", "", ""),
		"report_completed":       fmt.Sprintf(c.Templates.ReportCompleted, id, "", ""),
		"report_long_repair":     fmt.Sprintf(c.Templates.ReportLongRepair, id, "", "", "", ""),
		"report_closed":          fmt.Sprintf(c.Templates.ReportClosed, id, ""),
		"order_item":             fmt.Sprintf(c.Templates.OrderItem, "", id, "", "", "", "", ""),
		"order_item_long_repair": fmt.Sprintf(c.Templates.OrderItemLongRepair, "", "", "", ""),
		"order_item_completed":   fmt.Sprintf(c.Templates.OrderItemCompleted, "", ""),
	} {
		if strings.Contains(rendered, "%!") {
			return fmt.Errorf("%w: templates.%s", ErrBadTemplate, name)
		}
	}
	return nil
}

func (c *Catalog) MainMenu() []string {
	return []string{c.Menu.NewOrder, c.Menu.MyOrders, c.Menu.CompletedOrders, c.Menu.Report}
}

func (c *Catalog) StatusMenu() []string {
	labels := make([]string, 0, len(reportStatusOrder)+1)
	for _, status := range reportStatusOrder {
		labels = append(labels, c.ReportStatuses[string(status)])
	}
	return append(labels, c.Cancel)
}

// ParseReportStatus принимает подпись кнопки или имя статуса (long_repair, ...).
func (c *Catalog) ParseReportStatus(text string) (model.OrderStatus, bool) {
	text = strings.TrimSpace(text)
	for _, status := range reportStatusOrder {
		if strings.EqualFold(text, c.ReportStatuses[string(status)]) || strings.EqualFold(text, string(status)) {
			return status, true
		}
	}
	return "", false
}

func (c *Catalog) IsCancel(text string) bool {
	text = strings.TrimSpace(text)
	return strings.EqualFold(text, c.Cancel) || strings.EqualFold(text, "cancel")
}

func (c *Catalog) StatusName(status model.OrderStatus) string {
	if name, ok := c.StatusNames[string(status)]; ok {
		return name
	}
	return string(status)
}

func (c *Catalog) StatusEmojiFor(status model.OrderStatus) string {
	if emoji, ok := c.StatusEmoji[string(status)]; ok {
		return emoji
	}
	return "❓"
}

// ReportStatusLabel - подпись кнопки статуса, под которой его выбрали.
func (c *Catalog) ReportStatusLabel(status model.OrderStatus) string {
	if label, ok := c.ReportStatuses[string(status)]; ok {
		return label
	}
	return c.StatusName(status)
}
