package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/repairdesk/internal/model"
	"github.com/iurnickita/repairdesk/internal/telegram/config"
)

const testToken = "123:abc"

type botAPI struct {
	mu   sync.Mutex
	sent []sendMessageRequest
}

func (api *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/bot" + testToken + "/getMe":
		w.Write([]byte(`{"ok":true,"result":{"id":7,"is_bot":true,"username":"repair_bot"}}`))
	case "/bot" + testToken + "/getUpdates":
		var request getUpdatesRequest
		json.NewDecoder(r.Body).Decode(&request)
		if request.Offset > 11 {
			w.Write([]byte(`{"ok":true,"result":[]}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42},"text":"/start"}},
			{"update_id":11,"message":{"message_id":2,"from":{"id":43},"chat":{"id":43},"text":"hi"}}]}`))
	case "/bot" + testToken + "/sendMessage":
		var request sendMessageRequest
		json.NewDecoder(r.Body).Decode(&request)
		api.mu.Lock()
		api.sent = append(api.sent, request)
		api.mu.Unlock()
		w.Write([]byte(`{"ok":true,"result":{"message_id":100}}`))
	default:
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}
}

func newTestClient(t *testing.T, token string) (*Client, *botAPI) {
	t.Helper()
	api := &botAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.Config{BotToken: token, APIURL: srv.URL, PollTimeout: time.Second})
	require.NoError(t, err)
	return client, api
}

func TestNewClientNoToken(t *testing.T) {
	_, err := NewClient(config.Config{})
	require.ErrorIs(t, err, ErrNoToken)
}

func TestGetMe(t *testing.T) {
	client, _ := newTestClient(t, testToken)
	me, err := client.GetMe(context.Background())
	require.NoError(t, err)
	require.Equal(t, User{ID: 7, IsBot: true, UserName: "repair_bot"}, me)

	client, _ = newTestClient(t, "wrong")
	_, err = client.GetMe(context.Background())
	require.ErrorContains(t, err, "Unauthorized")
}

func TestGetUpdates(t *testing.T) {
	client, _ := newTestClient(t, testToken)
	updates, err := client.GetUpdates(context.Background(), 0, time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.Equal(t, int64(10), updates[0].UpdateID)
	require.Equal(t, "/start", updates[0].Message.Text)
	require.Equal(t, int64(43), updates[1].Message.From.ID)
}

func TestSendMessage(t *testing.T) {
	client, api := newTestClient(t, testToken)
	ctx := context.Background()

	require.NoError(t, client.SendMessage(ctx, 42, model.Reply{Text: "menu", SuggestedReplies: []string{"a", "b", "c"}}))
	require.NoError(t, client.SendMessage(ctx, 42, model.Reply{Text: "Введите адрес:"}))
	require.NoError(t, client.SendMessage(ctx, 42, model.Reply{}))

	require.Len(t, api.sent, 2)
	require.Equal(t, [][]keyboardButton{{{Text: "a"}, {Text: "b"}}, {{Text: "c"}}}, api.sent[0].ReplyMarkup.Keyboard)
	require.True(t, api.sent[0].ReplyMarkup.ResizeKeyboard)
	require.True(t, api.sent[1].ReplyMarkup.RemoveKeyboard)
	require.Empty(t, api.sent[1].ReplyMarkup.Keyboard)
}

func TestSendMessageSplitsLongText(t *testing.T) {
	client, api := newTestClient(t, testToken)

	line := strings.Repeat("ж", 99) + "\n"
	text := strings.Repeat(line, 50)
	require.NoError(t, client.SendMessage(context.Background(), 42, model.Reply{Text: text, SuggestedReplies: []string{"a"}}))

	require.Len(t, api.sent, 2)
	require.Nil(t, api.sent[0].ReplyMarkup)
	require.NotNil(t, api.sent[1].ReplyMarkup)
	require.Equal(t, text, api.sent[0].Text+api.sent[1].Text)
	require.LessOrEqual(t, utf8.RuneCountInString(api.sent[0].Text), MaxMessageLength)
	require.True(t, strings.HasSuffix(api.sent[0].Text, "\n"))
}

func TestSplitText(t *testing.T) {
	require.Equal(t, []string{"short"}, splitText("short", 10))
	require.Equal(t, []string{"abcdefghij", "klm"}, splitText("abcdefghijklm", 10))
	require.Equal(t, []string{"abcdefg\n", "hijklm"}, splitText("abcdefg\nhijklm", 10))
}
