package health

import (
	"errors"
	"sync"
	"time"
)

var ErrRecoveryExhausted = errors.New("recovery attempts exhausted")

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateRecovering
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRecovering:
		return "recovering"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Tracker следит за доступностью upstream API как маленький state machine.
// Переходы только через RecordSuccess/RecordError/AttemptRecovery.
type Tracker struct {
	mu                sync.Mutex
	state             State
	errorCount        int
	maxErrors         int
	lastSuccess       time.Time
	recoveryAttempts  int
	maxRecovery       int
	recoveryDecrement int
}

type TrackerConfig struct {
	MaxErrors           int
	MaxRecoveryAttempts int
	RecoveryDecrement   int
}

func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 3
	}
	if cfg.MaxRecoveryAttempts <= 0 {
		cfg.MaxRecoveryAttempts = 3
	}
	if cfg.RecoveryDecrement <= 0 {
		cfg.RecoveryDecrement = 1
	}

	return &Tracker{
		state:             StateConnecting,
		maxErrors:         cfg.MaxErrors,
		maxRecovery:       cfg.MaxRecoveryAttempts,
		recoveryDecrement: cfg.RecoveryDecrement,
	}
}

func (t *Tracker) IsHealthy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateConnected, StateConnecting, StateRecovering:
		return t.errorCount < t.maxErrors
	}
	return false
}

// RecordSuccess полностью сбрасывает счетчик ошибок и попытки восстановления
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.errorCount = 0
	t.recoveryAttempts = 0
	t.state = StateConnected
	t.lastSuccess = time.Now()
}

func (t *Tracker) RecordError() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.errorCount++
	if t.errorCount < t.maxErrors {
		return
	}

	// порог достигнут: восстанавливаемся пока есть попытки, иначе терминальное Error
	if t.recoveryAttempts < t.maxRecovery {
		t.state = StateRecovering
	} else {
		t.state = StateError
	}
}

// AttemptRecovery возвращает false когда попытки исчерпаны
func (t *Tracker) AttemptRecovery() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.recoveryAttempts >= t.maxRecovery {
		t.state = StateError
		return false
	}

	t.recoveryAttempts++
	t.errorCount -= t.recoveryDecrement
	if t.errorCount < 0 {
		t.errorCount = 0
	}
	t.state = StateRecovering
	return true
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) ErrorCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errorCount
}

func (t *Tracker) LastSuccess() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSuccess
}
