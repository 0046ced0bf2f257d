package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ge-price-monitor/internal/quote"
)

func testNotification() Notification {
	qt := quote.Quote{ItemID: 4151, Low: quote.Price(1500000), High: quote.Price(1550000)}
	return NewNotification("session-1", "Abyssal whip", qt, Trigger{Rule: LowAlert(1600000), Price: 1500000})
}

func TestNotificationText(t *testing.T) {
	note := testNotification()
	assert.Equal(t, "Abyssal whip Price Alert", note.Title())
	assert.Equal(t, "Low Price Alert: 1,500,000 coins", note.Message())
	assert.Equal(t, 4151, note.ItemID)
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("path should contain sendMessage, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	require.NoError(t, notifier.Notify(context.Background(), testNotification()))

	assert.Equal(t, "chat", received["chat_id"])
	assert.Contains(t, received["text"], "Abyssal whip Price Alert")
	assert.Contains(t, received["text"], "Target: 1,600,000 coins (low-alert)")
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	assert.Error(t, notifier.Notify(context.Background(), testNotification()), "ok=false should fail")
}

func TestTelegramNotifierRejectedRequest(t *testing.T) {
	var path, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		contentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "Bad Request: chat not found"})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("123:abc", "chat", srv.URL+"/", time.Second, testLogger())
	err := notifier.Notify(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Contains(t, contentType, "application/json")
}

func TestDesktopNotifier(t *testing.T) {
	var gotTitle, gotMessage, gotIcon string
	send := func(title, message, icon string) error {
		gotTitle, gotMessage, gotIcon = title, message, icon
		return nil
	}

	note := testNotification()
	note.IconPath = "/tmp/whip.png"

	d := newDesktopNotifier(send, time.Second, testLogger())
	require.NoError(t, d.Notify(context.Background(), note))
	assert.Equal(t, "Abyssal whip Price Alert", gotTitle)
	assert.Equal(t, "Low Price Alert: 1,500,000 coins", gotMessage)
	assert.Equal(t, "/tmp/whip.png", gotIcon)
}

func TestDesktopNotifierFailure(t *testing.T) {
	d := newDesktopNotifier(func(string, string, string) error { return errors.New("no dbus") }, time.Second, testLogger())
	assert.Error(t, d.Notify(context.Background(), testNotification()))
}

func TestDesktopNotifierTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	d := newDesktopNotifier(func(string, string, string) error { <-block; return nil }, 10*time.Millisecond, testLogger())
	assert.Error(t, d.Notify(context.Background(), testNotification()))
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, Notification) error {
	r.calls++
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("down")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok, NewLogNotifier(testLogger())}.Notify(context.Background(), testNotification())
	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
