package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Monitor - фоновый цикл, который периодически оценивает состояние
// и запускает восстановление. Когда попытки исчерпаны - дергает onFatal
// (инициирует остановку процесса) и выходит.
type Monitor struct {
	tracker  *Tracker
	interval time.Duration
	onFatal  func()
	logger   *zap.Logger
}

type MonitorConfig struct {
	Interval time.Duration
}

func NewMonitor(tracker *Tracker, cfg MonitorConfig, onFatal func(), logger *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		tracker:  tracker,
		interval: cfg.Interval,
		onFatal:  onFatal,
		logger:   logger,
	}
}

// Run блокируется до отмены контекста или исчерпания восстановления
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("health monitor stopped")
			return
		case <-ticker.C:
			if !m.tick() {
				return
			}
		}
	}
}

// tick возвращает false когда мониторить дальше бессмысленно
func (m *Monitor) tick() (keepGoing bool) {
	// паника внутри проверки не должна убивать монитор -
	// считаем ее поводом для восстановления
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("health check panicked", zap.Any("panic", r))
			m.tracker.RecordError()
			keepGoing = true
		}
	}()

	if m.tracker.IsHealthy() {
		return true
	}

	state := m.tracker.State()
	m.logger.Warn("upstream unhealthy",
		zap.String("state", state.String()),
		zap.Int("error_count", m.tracker.ErrorCount()),
	)

	// Error терминален - туда попадаем только когда попытки уже кончились
	if state != StateError && m.tracker.AttemptRecovery() {
		m.logger.Info("attempting recovery",
			zap.Int("error_count", m.tracker.ErrorCount()),
		)
		return true
	}

	m.logger.Error("recovery exhausted, shutting down", zap.Error(ErrRecoveryExhausted))
	if m.onFatal != nil {
		m.onFatal()
	}
	return false
}
