// Package telegram - минимальный клиент Telegram Bot API (long polling)
// и цикл, передающий сообщения в диалог.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/telegram/config"
)

// Ограничение Telegram на длину текста одного сообщения
const MaxMessageLength = 4096

// Сколько кнопок в ряду клавиатуры
const keyboardRowSize = 2

var ErrNoToken = errors.New("telegram bot token is not set")

type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	UserName string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Ответ Bot API: {"ok": true, "result": ...} либо описание ошибки
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

type replyMarkup struct {
	Keyboard       [][]keyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
	RemoveKeyboard bool               `json:"remove_keyboard,omitempty"`
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type Client struct {
	http *resty.Client
}

func NewClient(cfg config.Config) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, ErrNoToken
	}
	http := resty.New().
		SetBaseURL(cfg.APIURL+"/bot"+cfg.BotToken).
		SetHeader("Content-Type", "application/json").
		// запас сверх long polling, чтобы не обрывать ожидание обновлений
		SetTimeout(cfg.PollTimeout + 10*time.Second)
	return &Client{http: http}, nil
}

func (client *Client) call(ctx context.Context, method string, body any, result any) error {
	req := client.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post("/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	var answer apiResponse
	if err := json.Unmarshal(resp.Body(), &answer); err != nil {
		return fmt.Errorf("telegram %s status %d: %w", method, resp.StatusCode(), err)
	}
	if !answer.OK {
		return fmt.Errorf("telegram %s: %d %s", method, answer.ErrorCode, answer.Description)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(answer.Result, result)
}

// GetMe проверяет токен.
func (client *Client) GetMe(ctx context.Context) (User, error) {
	var me User
	err := client.call(ctx, "getMe", nil, &me)
	return me, err
}

func (client *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := client.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message"},
	}, &updates)
	return updates, err
}

// SendMessage отправляет ответ, разбивая длинный текст на части.
// Клавиатура прикрепляется к последней части. Пустой ответ не отправляется.
func (client *Client) SendMessage(ctx context.Context, chatID int64, reply model.Reply) error {
	if reply.Text == "" {
		return nil
	}
	parts := splitText(reply.Text, MaxMessageLength)
	for i, part := range parts {
		request := sendMessageRequest{ChatID: chatID, Text: part}
		if i == len(parts)-1 {
			request.ReplyMarkup = markup(reply.SuggestedReplies)
		}
		if err := client.call(ctx, "sendMessage", request, nil); err != nil {
			return err
		}
	}
	return nil
}

func markup(suggested []string) *replyMarkup {
	if suggested == nil {
		return &replyMarkup{RemoveKeyboard: true}
	}
	var rows [][]keyboardButton
	for start := 0; start < len(suggested); start += keyboardRowSize {
		end := min(start+keyboardRowSize, len(suggested))
		row := make([]keyboardButton, 0, end-start)
		for _, label := range suggested[start:end] {
			row = append(row, keyboardButton{Text: label})
		}
		rows = append(rows, row)
	}
	return &replyMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// splitText режет по символам, стараясь закончить часть на переводе строки.
func splitText(text string, limit int) []string {
	runes := []rune(text)
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
