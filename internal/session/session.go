package session

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/repairdesk/internal/session/config"
)

// State - шаг диалога пользователя и ответы, собранные в текущем сценарии.
type State struct {
	Step      Step
	Buffer    map[string]string
	UpdatedAt time.Time
}

func (s *State) Reset() {
	s.Step = StepIdle
	s.Buffer = nil
}

// Begin начинает сценарий с чистым буфером.
func (s *State) Begin(step Step) {
	s.Step = step
	s.Buffer = map[string]string{}
}

func (s *State) Set(field, value string) {
	if s.Buffer == nil {
		s.Buffer = map[string]string{}
	}
	s.Buffer[field] = value
}

func (s *State) Get(field string) string {
	return s.Buffer[field]
}

func (s *State) Clone() State {
	clone := *s
	clone.Buffer = maps.Clone(s.Buffer)
	return clone
}

// Store хранит состояния диалогов по пользователям.
// Сообщения одного пользователя обрабатываются строго по очереди: пока сессия
// захвачена через Acquire, следующий Acquire того же пользователя ждет.
type Store struct {
	cfg    config.Config
	zaplog *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	lock  chan struct{}
	state State
	refs  int // захвачено или ожидает захвата
	// сценарий сброшен сборщиком, пользователь еще не получил уведомление
	expired bool
}

func NewStore(cfg config.Config, zaplog *zap.Logger) *Store {
	return &Store{
		cfg:     cfg,
		zaplog:  zaplog,
		now:     time.Now,
		entries: make(map[int64]*entry),
	}
}

// Session - захваченное состояние пользователя. Обязательно Release.
type Session struct {
	UserID int64
	State  *State
	// Expired - незавершенный сценарий сброшен по TTL при захвате.
	Expired bool

	store *Store
	entry *entry
	done  bool
}

func (store *Store) Acquire(ctx context.Context, userID int64) (*Session, error) {
	store.mu.Lock()
	e, ok := store.entries[userID]
	if !ok {
		e = &entry{lock: make(chan struct{}, 1)}
		e.state.UpdatedAt = store.now()
		store.entries[userID] = e
	}
	e.refs++
	store.mu.Unlock()

	sess, err := store.lock(ctx, userID, e)
	if err != nil {
		return nil, err
	}

	store.mu.Lock()
	if e.expired || store.expired(e.state) {
		e.state.Reset()
		e.expired = false
		sess.Expired = true
	}
	store.mu.Unlock()
	return sess, nil
}

func (store *Store) lock(ctx context.Context, userID int64, e *entry) (*Session, error) {
	select {
	case e.lock <- struct{}{}:
	case <-ctx.Done():
		store.mu.Lock()
		e.refs--
		store.mu.Unlock()
		return nil, ctx.Err()
	}

	return &Session{
		UserID: userID,
		State:  &e.state,
		store:  store,
		entry:  e,
	}, nil
}

// Release отпускает сессию и отмечает активность пользователя.
func (sess *Session) Release() {
	sess.release(true)
}

func (sess *Session) release(touch bool) {
	if sess.done {
		return
	}
	sess.done = true
	if touch {
		sess.State.UpdatedAt = sess.store.now()
	}
	<-sess.entry.lock

	sess.store.mu.Lock()
	sess.entry.refs--
	sess.store.mu.Unlock()
}

// Snapshot возвращает копию состояния пользователя, не продлевая сессию.
func (store *Store) Snapshot(ctx context.Context, userID int64) (State, error) {
	store.mu.Lock()
	e, ok := store.entries[userID]
	if !ok {
		store.mu.Unlock()
		return State{Step: StepIdle}, nil
	}
	e.refs++
	store.mu.Unlock()

	sess, err := store.lock(ctx, userID, e)
	if err != nil {
		return State{}, err
	}
	defer sess.release(false)

	// просроченный сценарий виден как Idle, но сбрасывается только при Acquire
	store.mu.Lock()
	stale := e.expired || store.expired(e.state)
	store.mu.Unlock()
	if stale {
		return State{Step: StepIdle, UpdatedAt: e.state.UpdatedAt}, nil
	}
	return sess.State.Clone(), nil
}

func (store *Store) expired(state State) bool {
	if store.cfg.TTL <= 0 || state.Step == StepIdle {
		return false
	}
	return store.now().Sub(state.UpdatedAt) > store.cfg.TTL
}

// Sweep удаляет свободные простаивающие сессии и возвращает их число.
// У просроченных сценариев сбрасывается буфер, а запись остается до следующего
// обращения пользователя, чтобы он узнал о прерванном диалоге.
func (store *Store) Sweep() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for userID, e := range store.entries {
		if e.refs > 0 {
			continue
		}
		switch {
		case e.expired:
		case store.expired(e.state):
			e.state.Reset()
			e.expired = true
		case e.state.Step == StepIdle:
			delete(store.entries, userID)
			removed++
		}
	}
	return removed
}

func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}

// Run периодически вызывает Sweep до отмены контекста.
func (store *Store) Run(ctx context.Context) error {
	if store.cfg.SweepInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(store.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := store.Sweep(); removed > 0 {
				store.zaplog.Debug("sessions swept",
					zap.Int("removed", removed),
					zap.Int("left", store.Len()))
			}
		}
	}
}
