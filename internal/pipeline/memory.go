package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory — in-memory pipeline.
//
// Очереди — упорядоченные последовательности байтовых сообщений, адресуемые
// по имени. Операции не блокируются: чтение из пустой очереди сразу
// возвращает ErrEmptyQueue.
//
// Memory подменяет брокер в тестах и в dry-run, поэтому повторяет
// контракт production pipeline: те же имена очередей, тот же
// Receive/Acknowledge через internal-очередь.
type Memory struct {
	mu sync.Mutex

	// state — очереди по имени.
	state map[string][][]byte

	// order — имена очередей в порядке регистрации.
	order []string

	source       string
	internal     string
	destinations []string
}

// NewMemory создаёт пустой in-memory pipeline.
func NewMemory() *Memory {
	return &Memory{
		state: make(map[string][][]byte),
	}
}

// SetQueues регистрирует очереди под ролью.
//
// Для source дополнительно регистрируется internal-очередь.
// Повторная регистрация существующего имени не меняет его содержимого и позиции.
func (m *Memory) SetQueues(_ context.Context, role Role, names ...string) error {
	if err := ValidateQueues(role, names); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch role {
	case RoleSource:
		m.source = names[0]
		m.internal = InternalQueue(m.source)
		m.ensureLocked(m.source)
		m.ensureLocked(m.internal)
	case RoleDestination:
		m.destinations = slices.Clone(names)
		for _, name := range names {
			m.ensureLocked(name)
		}
	}

	return nil
}

// ensureLocked создаёт очередь, если её ещё нет.
func (m *Memory) ensureLocked(name string) {
	if _, ok := m.state[name]; ok {
		return
	}
	m.state[name] = [][]byte{}
	m.order = append(m.order, name)
}

// Push кладёт сообщение в хвост очереди. Очередь создаётся при необходимости.
func (m *Memory) Push(queue string, msg []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pushLocked(queue, msg)
}

func (m *Memory) pushLocked(queue string, msg []byte) {
	m.ensureLocked(queue)
	m.state[queue] = append(m.state[queue], slices.Clone(msg))
}

// Pop удаляет и возвращает голову очереди.
func (m *Memory) Pop(queue string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.popLocked(queue)
}

func (m *Memory) popLocked(queue string) ([]byte, error) {
	items := m.state[queue]
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyQueue, queue)
	}

	head := items[0]
	m.state[queue] = items[1:]
	return head, nil
}

// Peek возвращает голову очереди без удаления.
func (m *Memory) Peek(queue string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.state[queue]
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyQueue, queue)
	}
	return slices.Clone(items[0]), nil
}

// Send кладёт сообщение во все destination-очереди.
func (m *Memory) Send(_ context.Context, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.destinations) == 0 {
		return ErrNoDestinations
	}

	for _, name := range m.destinations {
		m.pushLocked(name, msg)
	}
	return nil
}

// Receive возвращает сообщение из source-очереди.
//
// Если предыдущее сообщение не подтверждено, возвращается оно же.
// Иначе голова source-очереди переносится в internal-очередь.
func (m *Memory) Receive(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source == "" {
		return nil, ErrSourceNotSet
	}

	if inflight := m.state[m.internal]; len(inflight) > 0 {
		return slices.Clone(inflight[0]), nil
	}

	msg, err := m.popLocked(m.source)
	if err != nil {
		return nil, err
	}

	m.state[m.internal] = append(m.state[m.internal], msg)
	return slices.Clone(msg), nil
}

// Acknowledge удаляет подтверждённое сообщение из internal-очереди.
// Смещения брокера здесь нет, поэтому без сообщения "в полёте" это no-op.
func (m *Memory) Acknowledge(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source == "" {
		return ErrSourceNotSet
	}

	if len(m.state[m.internal]) > 0 {
		m.state[m.internal] = m.state[m.internal][1:]
	}
	return nil
}

// Clear очищает очередь. Имя остаётся зарегистрированным.
func (m *Memory) Clear(_ context.Context, queue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state[queue]; ok {
		m.state[queue] = [][]byte{}
	}
	return nil
}

// Count возвращает количество сообщений в очереди.
func (m *Memory) Count(_ context.Context, queue string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.state[queue]), nil
}

// Close ничего не делает: ресурсов нет.
func (m *Memory) Close() error {
	return nil
}

// Names возвращает известные очереди в порядке регистрации.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.order)
}

// Queue возвращает копию содержимого очереди.
func (m *Memory) Queue(name string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneQueue(m.state[name])
}

// SetQueue заменяет содержимое очереди. Очередь создаётся при необходимости.
func (m *Memory) SetQueue(name string, items [][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLocked(name)
	m.state[name] = cloneQueue(items)
}

// State возвращает копию всех очередей.
func (m *Memory) State() map[string][][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := make(map[string][][]byte, len(m.state))
	for name, items := range m.state {
		state[name] = cloneQueue(items)
	}
	return state
}

func cloneQueue(items [][]byte) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = slices.Clone(item)
	}
	return out
}

var _ Pipeline = (*Memory)(nil)
