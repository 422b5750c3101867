package trivia

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mroshb/trivia_bot/pkg/errors"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/mroshb/trivia_bot/pkg/utils"
)

// SessionLock keeps two bot instances from running a game in the same chat.
type SessionLock interface {
	Acquire(ctx context.Context, chatID int64, ttl time.Duration) (bool, error)
	Release(ctx context.Context, chatID int64) error
}

type ManagerConfig struct {
	Source     QuestionSource
	Scores     ScoreLedger
	Recorder   RoundRecorder
	Presenters func(chatID int64) Presenter
	Lock       SessionLock
	Clock      Clock
	NewRand    func() *rand.Rand
	Settings   Settings
}

type activeSession struct {
	orch   *Orchestrator
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager runs at most one session per chat and routes submissions to it.
type Manager struct {
	cfg    ManagerConfig
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[int64]*activeSession
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.NewRand == nil {
		cfg.NewRand = utils.NewRand
	}
	cfg.Settings = cfg.Settings.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[int64]*activeSession),
	}
}

// Start launches a session of count questions in chatID. It returns
// ErrSessionActive when the chat already has one.
func (m *Manager) Start(ctx context.Context, chatID int64, count int, category string) error {
	orch := NewOrchestrator(chatID, Dependencies{
		Source:    m.cfg.Source,
		Presenter: m.cfg.Presenters(chatID),
		Scores:    m.cfg.Scores,
		Recorder:  m.cfg.Recorder,
		Clock:     m.cfg.Clock,
		Rand:      m.cfg.NewRand(),
	}, m.cfg.Settings)

	sessCtx, cancel := context.WithCancel(m.ctx)
	s := &activeSession{orch: orch, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if _, exists := m.sessions[chatID]; exists {
		m.mu.Unlock()
		cancel()
		return ErrSessionActive
	}
	m.sessions[chatID] = s
	m.mu.Unlock()

	if m.cfg.Lock != nil {
		ok, err := m.cfg.Lock.Acquire(ctx, chatID, m.lockTTL(count))
		if err != nil || !ok {
			m.remove(chatID, s)
			cancel()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "acquire chat lock")
			}
			return ErrSessionActive
		}
	}

	m.wg.Add(1)
	go m.run(sessCtx, chatID, s, count, category)
	return nil
}

func (m *Manager) run(ctx context.Context, chatID int64, s *activeSession, count int, category string) {
	defer m.wg.Done()
	defer close(s.done)
	defer m.remove(chatID, s)
	defer s.cancel()

	log := logger.With("chat_id", chatID)
	log.Info("Trivia session started", "questions", count, "category", category)

	summary, err := s.orch.RunSession(ctx, count, category)
	if err != nil {
		log.Error("Trivia session failed", "error", err)
	} else {
		log.Info("Trivia session finished",
			"played", summary.Played,
			"skipped", summary.Skipped,
			"abandoned", summary.Abandoned,
			"aborted", summary.Aborted,
		)
	}

	if m.cfg.Lock != nil {
		if err := m.cfg.Lock.Release(context.Background(), chatID); err != nil {
			log.Warn("Failed to release chat lock", "error", err)
		}
	}
}

// Submit routes a choice to the round published as messageID in chatID.
func (m *Manager) Submit(chatID int64, messageID int, p Participant, label Label) (Receipt, error) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	m.mu.Unlock()
	if !ok {
		return Receipt{}, ErrRoundClosed
	}
	return s.orch.Submit(messageID, p, label)
}

// Active reports whether chatID has a running session.
func (m *Manager) Active(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[chatID]
	return ok
}

// Stop ends the session in chatID. The current round still closes and is
// scored; no further rounds are played.
func (m *Manager) Stop(chatID int64) bool {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.cancel()
	return true
}

// Wait blocks until the session in chatID (if any) has finished.
func (m *Manager) Wait(chatID int64) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	m.mu.Unlock()
	if ok {
		<-s.done
	}
}

// Shutdown stops every session and waits for them to finish.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) remove(chatID int64, s *activeSession) {
	m.mu.Lock()
	if m.sessions[chatID] == s {
		delete(m.sessions, chatID)
	}
	m.mu.Unlock()
}

func (m *Manager) lockTTL(count int) time.Duration {
	perRound := m.cfg.Settings.AnswerWindow + m.cfg.Settings.RoundDelay
	return time.Duration(count)*perRound + time.Minute
}
