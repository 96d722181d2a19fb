// Package message описывает сообщения, которыми обмениваются боты.
//
// Сообщение — плоский словарь с ключами через точку ("feed.name",
// "source.ip"). Поле __type задаёт тип: Report (сырые данные от
// коллектора) или Event (разобранное событие). На проводе — JSON.
package message

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Type — тип сообщения.
type Type string

// Типы сообщений.
const (
	TypeReport Type = "Report"
	TypeEvent  Type = "Event"
)

// Служебные ключи.
const (
	KeyType = "__type"
	KeyRaw  = "raw"
)

// Message — сообщение бота.
type Message map[string]any

// New создаёт пустое сообщение заданного типа.
func New(t Type) Message {
	return Message{KeyType: string(t)}
}

// NewReport создаёт пустой Report.
func NewReport() Message {
	return New(TypeReport)
}

// NewEvent создаёт пустой Event.
func NewEvent() Message {
	return New(TypeEvent)
}

// Type возвращает тип сообщения.
func (m Message) Type() Type {
	t, _ := m[KeyType].(string)
	return Type(t)
}

// Add добавляет ключ. Существующий ключ не перезаписывается.
func (m Message) Add(key string, value any) error {
	if _, ok := m[key]; ok {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	m[key] = value
	return nil
}

// Set добавляет или перезаписывает ключ.
func (m Message) Set(key string, value any) {
	m[key] = value
}

// Get возвращает значение ключа.
func (m Message) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// String возвращает значение ключа как строку.
func (m Message) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Contains проверяет наличие ключа.
func (m Message) Contains(key string) bool {
	_, ok := m[key]
	return ok
}

// Copy возвращает поверхностную копию сообщения.
func (m Message) Copy() Message {
	return maps.Clone(m)
}

// SetRaw кладёт данные в raw в base64.
func (m Message) SetRaw(data []byte) {
	m[KeyRaw] = base64.StdEncoding.EncodeToString(data)
}

// Raw декодирует поле raw.
func (m Message) Raw() ([]byte, error) {
	s, ok := m[KeyRaw].(string)
	if !ok {
		return nil, ErrNoRaw
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode raw: %w", err)
	}
	return data, nil
}

// ToEvent создаёт Event из Report.
// Переносятся feed.* и time.observation.
func (m Message) ToEvent() Message {
	event := NewEvent()
	for key, value := range m {
		if strings.HasPrefix(key, "feed.") || key == "time.observation" {
			event[key] = value
		}
	}
	return event
}

// Serialize кодирует сообщение в JSON.
func (m Message) Serialize() ([]byte, error) {
	if _, err := parseType(m[KeyType]); err != nil {
		return nil, err
	}

	data, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

// Unserialize декодирует сообщение из JSON.
func Unserialize(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}

	if _, err := parseType(m[KeyType]); err != nil {
		return nil, err
	}
	return m, nil
}

func parseType(v any) (Type, error) {
	if v == nil {
		return "", ErrMissingType
	}

	s, _ := v.(string)
	switch t := Type(s); t {
	case TypeReport, TypeEvent:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownType, v)
	}
}
