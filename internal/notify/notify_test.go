package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"

	"github.com/mmynk/todosponen/internal/models"
)

type fakeProfiles map[string]models.Profile

func (f fakeProfiles) Profile(_ context.Context, userID string) (models.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return models.Profile{}, errors.New("no such user")
	}
	return p, nil
}

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg-id", nil
}

var testEvent = Event{
	UserID: "u1",
	Kind:   CircleStarted,
	Data:   map[string]string{"circle_id": "c1", "circle_name": "Family", "turn": "2"},
}

func TestFanout(t *testing.T) {
	var calls []string
	ok := NotifierFunc(func(_ context.Context, e Event) error {
		calls = append(calls, "ok")
		return nil
	})
	boom := errors.New("boom")
	failing := NotifierFunc(func(_ context.Context, e Event) error {
		calls = append(calls, "failing")
		return boom
	})

	err := Fanout{failing, nil, ok}.Notify(context.Background(), testEvent)
	if !errors.Is(err, boom) {
		t.Errorf("Fanout error = %v, want boom", err)
	}
	if len(calls) != 2 || calls[1] != "ok" {
		t.Errorf("calls = %v, want failing then ok", calls)
	}

	if err := (Fanout{ok}).Notify(context.Background(), testEvent); err != nil {
		t.Errorf("Fanout of succeeding notifiers returned %v", err)
	}
}

func TestEventText(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{RequestAccepted, "turn 2"},
		{RequestRejected, "declined"},
		{PaymentReceived, "confirmed"},
		{CircleStarted, "Family is active"},
		{PayoutProcessed, "paid out"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := testEvent
			e.Kind = tt.kind
			if e.Title() == "" {
				t.Error("Expected a title")
			}
			if !strings.Contains(e.Body(), tt.want) {
				t.Errorf("Body() = %q, want to contain %q", e.Body(), tt.want)
			}
		})
	}
}

func TestPush(t *testing.T) {
	profiles := fakeProfiles{
		"u1": {UserID: "u1", PushToken: "token-1"},
		"u2": {UserID: "u2"},
	}

	t.Run("sends to device token", func(t *testing.T) {
		sender := &fakeSender{}
		push := NewPushWithSender(sender, profiles)

		if err := push.Notify(context.Background(), testEvent); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
		if len(sender.sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(sender.sent))
		}
		msg := sender.sent[0]
		if msg.Token != "token-1" {
			t.Errorf("Token = %q, want token-1", msg.Token)
		}
		if msg.Data["type"] != string(CircleStarted) || msg.Data["circle_id"] != "c1" {
			t.Errorf("Data = %v", msg.Data)
		}
	})

	t.Run("skips users without token", func(t *testing.T) {
		sender := &fakeSender{}
		push := NewPushWithSender(sender, profiles)

		e := testEvent
		e.UserID = "u2"
		if err := push.Notify(context.Background(), e); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
		if len(sender.sent) != 0 {
			t.Errorf("sent %d messages, want 0", len(sender.sent))
		}
	})

	t.Run("propagates send errors", func(t *testing.T) {
		push := NewPushWithSender(&fakeSender{err: errors.New("unavailable")}, profiles)
		if err := push.Notify(context.Background(), testEvent); err == nil {
			t.Error("Expected error from failing sender")
		}
	})
}

func TestEmail(t *testing.T) {
	profiles := fakeProfiles{
		"u1": {UserID: "u1", Email: "alice@example.com", DisplayName: "Alice <3"},
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	email := NewEmail(EmailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		From:     "noreply@example.com",
		FromName: "TodosPonen",
	}, profiles)
	email.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	if err := email.Notify(context.Background(), testEvent); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "noreply@example.com" || len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Errorf("from=%q to=%v", gotFrom, gotTo)
	}
	if !strings.Contains(gotMsg, "From: TodosPonen <noreply@example.com>") {
		t.Errorf("missing From header in %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "Alice &lt;3") {
		t.Errorf("display name not escaped in %q", gotMsg)
	}
}
