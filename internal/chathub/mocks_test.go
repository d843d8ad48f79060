package chathub_test

import (
	"chatup/backend/internal/models"
	"chatup/backend/internal/storage"
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type sentEvent struct {
	Event string
	Data  any
}

// fakeTransport records every event emitted to it.
type fakeTransport struct {
	mu     sync.Mutex
	events []sentEvent
	closed bool
}

func (f *fakeTransport) Emit(event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{Event: event, Data: data})
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// All returns the payloads of every emitted event with the given name.
func (f *fakeTransport) All(event string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e.Data)
		}
	}
	return out
}

func (f *fakeTransport) Count(event string) int {
	return len(f.All(event))
}

func (f *fakeTransport) Last(event string) (any, bool) {
	all := f.All(event)
	if len(all) == 0 {
		return nil, false
	}
	return all[len(all)-1], true
}

// LastHistory returns the most recent updatedMessages payload.
func (f *fakeTransport) LastHistory() []models.MessageView {
	data, ok := f.Last("updatedMessages")
	if !ok {
		return nil
	}
	return data.([]models.MessageView)
}

// MockArchive is a testify mock of storage.RoomArchive. Saved and closed room
// ids are also pushed to channels so tests can wait for background writes.
type MockArchive struct {
	mock.Mock
	saved  chan *models.ChatRoom
	closed chan string
}

func newMockArchive() *MockArchive {
	return &MockArchive{
		saved:  make(chan *models.ChatRoom, 16),
		closed: make(chan string, 16),
	}
}

func (m *MockArchive) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	args := m.Called(ctx, room)
	m.saved <- room
	return args.Error(0)
}

func (m *MockArchive) CloseRoom(ctx context.Context, roomID string, endedAt time.Time) error {
	args := m.Called(ctx, roomID, endedAt)
	m.closed <- roomID
	return args.Error(0)
}

func (m *MockArchive) GetActiveRoomIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

// failingLog is a MessageLog whose every operation fails.
type failingLog struct{ err error }

func (l failingLog) Append(context.Context, string, *models.Message) error { return l.err }
func (l failingLog) List(context.Context, string) ([]models.Message, error) { return nil, l.err }
func (l failingLog) SetReaction(context.Context, string, string, string) error { return l.err }

// slowLog is a MemoryLog whose next List can be held back.
type slowLog struct {
	*storage.MemoryLog

	mu    sync.Mutex
	delay time.Duration
}

func newSlowLog() *slowLog {
	return &slowLog{MemoryLog: storage.NewMemoryLog()}
}

// DelayNextList makes the next List call sleep for d.
func (l *slowLog) DelayNextList(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delay = d
}

func (l *slowLog) List(ctx context.Context, roomID string) ([]models.Message, error) {
	l.mu.Lock()
	d := l.delay
	l.delay = 0
	l.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	return l.MemoryLog.List(ctx, roomID)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
