package model

import "strings"

// Event - входящее сообщение от транспорта.
type Event struct {
	SenderID    int64  `json:"sender_id"`
	Text        string `json:"text"`
	IsCommand   bool   `json:"is_command"`
	CommandName string `json:"command_name,omitempty"`
}

// Reply - ответ пользователю. Пустой Text означает, что отвечать не нужно,
// nil SuggestedReplies - убрать клавиатуру.
type Reply struct {
	Text             string   `json:"text"`
	SuggestedReplies []string `json:"suggested_replies"`
}

// NewEvent разбирает текст сообщения. "/report@SomeBot arg" -> команда "report".
func NewEvent(senderID int64, text string) Event {
	event := Event{SenderID: senderID, Text: text}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return event
	}
	name := strings.TrimPrefix(trimmed, "/")
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return event
	}
	event.IsCommand = true
	event.CommandName = strings.ToLower(name)
	return event
}
