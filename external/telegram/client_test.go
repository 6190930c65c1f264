package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

type recordedCall struct {
	path    string
	payload map[string]any
}

type fakeBotAPI struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(call recordedCall, w http.ResponseWriter)
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	call := recordedCall{path: r.URL.Path, payload: map[string]any{}}
	_ = sonic.Unmarshal(raw, &call.payload)

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	f.handler(call, w)
}

func (f *fakeBotAPI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:   baseURL,
		Token:     "123:secret",
		ParseMode: DefaultParseMode,
		Timeout:   time.Second,
		Logger:    logging.NewNop(),
	})
}

func TestClient_Send_PostsMarkdownMessage(t *testing.T) {
	t.Parallel()

	api := &fakeBotAPI{handler: func(_ recordedCall, w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"chat":{"id":42}}}`))
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	if err := newTestClient(srv.URL).Send(context.Background(), "42", "🎾 *Today’s Matches*"); err != nil {
		t.Fatalf("send: %v", err)
	}

	calls := api.recorded()
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].path != "/bot123:secret/sendMessage" {
		t.Fatalf("unexpected path %q", calls[0].path)
	}
	if calls[0].payload["chat_id"] != "42" || calls[0].payload["parse_mode"] != "Markdown" {
		t.Fatalf("unexpected payload %v", calls[0].payload)
	}
}

func TestClient_Send_FallsBackToPlainTextOnMarkupError(t *testing.T) {
	t.Parallel()

	api := &fakeBotAPI{handler: func(call recordedCall, w http.ResponseWriter) {
		if _, ok := call.payload["parse_mode"]; ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities: Can't find end of the entity"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":8,"chat":{"id":42}}}`))
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	if err := newTestClient(srv.URL).Send(context.Background(), "42", "🏆 *Abu_Dhabi Open"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls := api.recorded(); len(calls) != 2 {
		t.Fatalf("expected a plain-text retry, got %d calls", len(calls))
	}
}

func TestClient_Send_ReportsAPIErrors(t *testing.T) {
	t.Parallel()

	api := &fakeBotAPI{handler: func(_ recordedCall, w http.ResponseWriter) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	err := newTestClient(srv.URL).Send(context.Background(), "42", "hello")
	if err == nil || !strings.Contains(err.Error(), "blocked") {
		t.Fatalf("expected blocked error, got %v", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("token leaked into error: %v", err)
	}
}

func TestClient_Send_ValidatesInput(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:1")
	if err := client.Send(context.Background(), "", "x"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty recipient, got %v", err)
	}
	if err := client.Send(context.Background(), "1", " "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty text, got %v", err)
	}

	noToken := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Logger: logging.NewNop()})
	if err := noToken.Send(context.Background(), "1", "x"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency error without token, got %v", err)
	}
}

func TestClient_GetUpdates(t *testing.T) {
	t.Parallel()

	api := &fakeBotAPI{handler: func(_ recordedCall, w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"/start"}},
			{"update_id":11}
		]}`))
	}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	updates, err := newTestClient(srv.URL).GetUpdates(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 2 || updates[0].Message == nil || updates[0].Message.Text != "/start" {
		t.Fatalf("unexpected updates: %+v", updates)
	}
	if updates[1].Message != nil {
		t.Fatalf("expected update without message to decode as nil")
	}

	calls := api.recorded()
	if calls[0].payload["offset"] != float64(10) {
		t.Fatalf("expected offset in payload, got %v", calls[0].payload)
	}
}

func TestChatID(t *testing.T) {
	t.Parallel()

	if got := ChatID(-1001234); got != "-1001234" {
		t.Fatalf("unexpected chat id %q", got)
	}
}
