package chathub

import (
	"chatup/backend/internal/localization"
	"chatup/backend/internal/metrics"
	"chatup/backend/internal/models"
	"chatup/backend/internal/storage"
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultGracePeriod      = 5 * time.Minute
	DefaultMaxMessageLength = 2000
	defaultStoreTimeout     = 5 * time.Second
	maxReactionLength       = 32
	taskBuffer              = 1024
)

// Option configures a ManagerService.
type Option func(*ManagerService)

func WithMetrics(c *metrics.Collector) Option {
	return func(m *ManagerService) { m.metrics = c }
}

func WithLocalizer(l *localization.Localizer) Option {
	return func(m *ManagerService) { m.texts = l }
}

// WithGracePeriod sets how long a disconnected session survives before the
// sweeper evicts it.
func WithGracePeriod(d time.Duration) Option {
	return func(m *ManagerService) { m.grace = d }
}

func WithMaxMessageLength(n int) Option {
	return func(m *ManagerService) { m.maxMessageLength = n }
}

func WithStoreTimeout(d time.Duration) Option {
	return func(m *ManagerService) { m.storeTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *ManagerService) { m.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(m *ManagerService) { m.rng = r }
}

// ManagerService is the chat hub. Every piece of in-memory state (sessions,
// queue, rooms, broadcast groups) is mutated only by the goroutine running
// Run; transports and timers hand work to it through post.
type ManagerService struct {
	Registry *Registry
	Queue    *Queue
	Rooms    *RoomManager
	Groups   *Groups

	Log     storage.MessageLog
	Archive storage.RoomArchive

	texts   *localization.Localizer
	metrics *metrics.Collector
	logger  *zap.Logger

	grace            time.Duration
	maxMessageLength int
	storeTimeout     time.Duration
	now              func() time.Time
	rng              *rand.Rand

	ctx     context.Context
	tasks   chan func()
	stopped chan struct{}

	storeMu   sync.Mutex
	storeJobs map[string][]storeJob
}

func NewManagerService(log storage.MessageLog, archive storage.RoomArchive, logger *zap.Logger, opts ...Option) *ManagerService {
	if archive == nil {
		archive = storage.NopArchive{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &ManagerService{
		Registry:         NewRegistry(),
		Queue:            NewQueue(),
		Groups:           NewGroups(),
		Log:              log,
		Archive:          archive,
		logger:           logger,
		grace:            DefaultGracePeriod,
		maxMessageLength: DefaultMaxMessageLength,
		storeTimeout:     defaultStoreTimeout,
		now:              time.Now,
		ctx:              context.Background(),
		tasks:            make(chan func(), taskBuffer),
		stopped:          make(chan struct{}),
		storeJobs:        make(map[string][]storeJob),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.texts == nil {
		texts, err := localization.NewDefaultLocalizer()
		if err != nil {
			logger.Error("failed to load translations", zap.Error(err))
		}
		m.texts = texts
	}
	m.Rooms = NewRoomManager(m.Groups, m.now)
	return m
}

// Run processes hub tasks until ctx is cancelled.
func (m *ManagerService) Run(ctx context.Context) {
	m.ctx = ctx
	defer close(m.stopped)

	m.logger.Info("chat hub started")
	m.closeStaleRooms(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("chat hub stopped")
			return
		case task := <-m.tasks:
			task()
		}
	}
}

// post queues a task for the hub loop. It returns false once the loop is gone.
func (m *ManagerService) post(task func()) bool {
	select {
	case m.tasks <- task:
		return true
	case <-m.stopped:
		return false
	}
}

// Call runs fn on the hub loop and waits for it to finish.
func (m *ManagerService) Call(fn func()) bool {
	done := make(chan struct{})
	if !m.post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-m.stopped:
		return false
	}
}

// Connect binds transport t to the session identified by token, creating
// the session if it does not exist yet.
func (m *ManagerService) Connect(t Transport, token string) {
	m.post(func() { m.connect(t, token) })
}

// Disconnect reports that transport t of the session went away. Reports
// from a transport that was already replaced are ignored.
func (m *ManagerService) Disconnect(sessionID string, t Transport, reason string) {
	m.post(func() { m.disconnect(sessionID, t, reason) })
}

// HandleEvent decodes a client frame and schedules its handler. reply is
// used by events that answer through an acknowledgement.
func (m *ManagerService) HandleEvent(sessionID string, t Transport, env Envelope, reply func(any)) {
	logger := m.logger.With(zap.String("session", sessionID), zap.String("event", env.Event))

	switch env.Event {
	case EventStartSearch, EventUpdateData:
		var prefs models.Preferences
		if err := decode(env.Data, &prefs); err != nil {
			logger.Warn("invalid preferences payload", zap.Error(err))
			return
		}
		m.withSession(sessionID, t, func(s *Session) {
			if env.Event == EventStartSearch {
				m.startSearch(s, &prefs)
			} else {
				m.updateData(s, &prefs)
			}
		})

	case EventCancelSearch:
		m.withSession(sessionID, t, m.cancelSearch)

	case EventSendMessage:
		text, err := decodeText(env.Data)
		if err != nil {
			logger.Warn("invalid message payload", zap.Error(err))
			return
		}
		m.withSession(sessionID, t, func(s *Session) { m.sendMessage(s, text) })

	case EventAddReaction:
		var req ReactionRequest
		if err := decode(env.Data, &req); err != nil {
			logger.Warn("invalid reaction payload", zap.Error(err))
			return
		}
		m.withSession(sessionID, t, func(s *Session) { m.addReaction(s, req) })

	case EventValidateChat:
		var req ValidateRequest
		if err := decode(env.Data, &req); err != nil {
			logger.Warn("invalid validate payload", zap.Error(err))
			return
		}
		if reply == nil {
			reply = func(any) {}
		}
		m.withSession(sessionID, t, func(s *Session) { m.validateChat(s, req, reply) })

	case EventLeaveChat:
		m.withSession(sessionID, t, m.leaveChat)

	case EventRoomLeaved:
		m.withSession(sessionID, t, m.roomLeaved)

	case EventTyping:
		payload := env.Data
		m.withSession(sessionID, t, func(s *Session) { m.typing(s, payload) })

	default:
		logger.Debug("unknown event")
	}
}

// withSession runs fn on the loop if t is still the session's transport.
func (m *ManagerService) withSession(sessionID string, t Transport, fn func(*Session)) {
	m.post(func() {
		s := m.Registry.Get(sessionID)
		if s == nil || s.Transport() != t {
			m.logger.Debug("event from stale transport dropped", zap.String("session", sessionID))
			return
		}
		fn(s)
	})
}

// persist queues work against the message log of roomID and posts then back
// onto the loop. Jobs of one room run one at a time in submission order, so
// continuations see histories in the order the actions were accepted. then
// must re-check any state it relies on.
func (m *ManagerService) persist(roomID, op string, work func(ctx context.Context) ([]models.Message, error), then func([]models.Message)) {
	job := storeJob{ctx: m.ctx, op: op, work: work, then: then}

	m.storeMu.Lock()
	queued, running := m.storeJobs[roomID]
	m.storeJobs[roomID] = append(queued, job)
	m.storeMu.Unlock()

	if !running {
		go m.drainStore(roomID)
	}
}

type storeJob struct {
	ctx  context.Context
	op   string
	work func(ctx context.Context) ([]models.Message, error)
	then func([]models.Message)
}

// drainStore runs the room's queued jobs until none are left. The room's
// entry stays in storeJobs while a job is in flight.
func (m *ManagerService) drainStore(roomID string) {
	for {
		m.storeMu.Lock()
		queued := m.storeJobs[roomID]
		if len(queued) == 0 {
			delete(m.storeJobs, roomID)
			m.storeMu.Unlock()
			return
		}
		job := queued[0]
		m.storeJobs[roomID] = queued[1:]
		m.storeMu.Unlock()

		m.runStoreJob(job)
	}
}

func (m *ManagerService) runStoreJob(job storeJob) {
	ctx, cancel := context.WithTimeout(job.ctx, m.storeTimeout)
	defer cancel()

	msgs, err := job.work(ctx)
	if err != nil {
		m.storeFailed(job.op, err)
		return
	}
	m.post(func() { job.then(msgs) })
}

// archive writes to the room archive in the background.
func (m *ManagerService) archive(op string, work func(ctx context.Context) error) {
	ctx := m.ctx
	go func() {
		cctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
		defer cancel()
		if err := work(cctx); err != nil {
			m.storeFailed(op, err)
		}
	}()
}

func (m *ManagerService) storeFailed(op string, err error) {
	if errors.Is(err, storage.ErrMessageNotFound) {
		m.logger.Debug("store operation skipped", zap.String("op", op), zap.Error(err))
		return
	}
	m.metrics.IncStoreFailure(op)
	m.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
}

// closeStaleRooms closes archive records left open by a previous process.
// Rooms live in memory only, so none of them can be resumed.
func (m *ManagerService) closeStaleRooms(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()

	roomIDs, err := m.Archive.GetActiveRoomIDs(cctx)
	if err != nil {
		m.storeFailed("archive_list", err)
		return
	}
	now := m.now()
	for _, id := range roomIDs {
		if err := m.Archive.CloseRoom(cctx, id, now); err != nil {
			m.storeFailed("archive_close", err)
		}
	}
	if len(roomIDs) > 0 {
		m.logger.Info("closed stale archived rooms", zap.Int("count", len(roomIDs)))
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return errors.Wrap(json.Unmarshal(raw, v), "decode payload")
}

// decodeText accepts a bare JSON string or {"text": "..."}.
func decodeText(raw json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := decode(raw, &obj); err != nil {
		return "", err
	}
	return obj.Text, nil
}
