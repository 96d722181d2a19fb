package message

import (
	"errors"
	"testing"
)

func TestMessage_Add(t *testing.T) {
	m := NewEvent()

	if err := m.Add("source.ip", "192.0.2.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := m.Add("source.ip", "192.0.2.2")
	if !errors.Is(err, ErrKeyExists) {
		t.Errorf("expected ErrKeyExists, got %v", err)
	}
	if m.String("source.ip") != "192.0.2.1" {
		t.Errorf("Add must not overwrite, got %s", m.String("source.ip"))
	}
}

func TestMessage_Raw(t *testing.T) {
	m := NewReport()
	m.SetRaw([]byte("bar text\n"))

	if m.String(KeyRaw) != "YmFyIHRleHQK" {
		t.Errorf("unexpected raw encoding: %s", m.String(KeyRaw))
	}

	data, err := m.Raw()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "bar text\n" {
		t.Errorf("expected round trip, got %q", data)
	}

	if _, err := NewReport().Raw(); !errors.Is(err, ErrNoRaw) {
		t.Errorf("expected ErrNoRaw, got %v", err)
	}
}

func TestMessage_ToEvent(t *testing.T) {
	report := NewReport()
	report.Set("feed.name", "IMAP Feed")
	report.Set("feed.accuracy", 100.0)
	report.Set("time.observation", "2026-10-17T00:00:00+00:00")
	report.SetRaw([]byte("x"))

	event := report.ToEvent()

	if event.Type() != TypeEvent {
		t.Errorf("expected Event, got %s", event.Type())
	}
	if event.String("feed.name") != "IMAP Feed" {
		t.Errorf("feed.name not copied")
	}
	if !event.Contains("time.observation") {
		t.Errorf("time.observation not copied")
	}
	if event.Contains(KeyRaw) {
		t.Errorf("raw must not be copied")
	}
}

func TestUnserialize(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "report", data: `{"__type":"Report","feed.name":"x"}`},
		{name: "event", data: `{"__type":"Event"}`},
		{name: "missing type", data: `{"feed.name":"x"}`, wantErr: ErrMissingType},
		{name: "unknown type", data: `{"__type":"Alert"}`, wantErr: ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unserialize([]byte(tt.data))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUnserialize_NotJSON(t *testing.T) {
	if _, err := Unserialize([]byte("bar text")); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}

func TestSerialize_RequiresType(t *testing.T) {
	if _, err := (Message{"feed.name": "x"}).Serialize(); !errors.Is(err, ErrMissingType) {
		t.Errorf("expected ErrMissingType, got %v", err)
	}
}
