package sweeper

import (
	"context"
	"time"
)

// HoldFinder ищет просроченные холды, подлежащие реклейму
type HoldFinder interface {
	FindExpiredIDs(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]int64, error)
}

// HoldExpirer переводит один холд в expired
type HoldExpirer interface {
	ExpireHold(ctx context.Context, holdID int64) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics счётчики работы sweeper'а
type Metrics interface {
	IncHoldsExpired(result string)
	IncSweeperErrors(stage string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// realTimeProvider реальный провайдер времени
type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Sweeper фоновый процесс реклейма просроченных холдов
// Это подстраховка, а не источник истины: доступная ёмкость считается по
// SQL-предикату и просроченный холд перестаёт занимать места сразу,
// независимо от того, успел ли sweeper его обработать
type Sweeper struct {
	finder       HoldFinder
	expirer      HoldExpirer
	timeProvider TimeProvider
	interval     time.Duration
	grace        time.Duration
	batchSize    int
	metrics      Metrics
	logger       Logger
}

// New создает новый экземпляр sweeper'а
// metrics может быть nil - тогда счётчики не ведутся
func New(
	finder HoldFinder,
	expirer HoldExpirer,
	interval time.Duration,
	grace time.Duration,
	batchSize int,
	metrics Metrics,
	logger Logger,
) *Sweeper {
	return &Sweeper{
		finder:       finder,
		expirer:      expirer,
		timeProvider: realTimeProvider{},
		interval:     interval,
		grace:        grace,
		batchSize:    batchSize,
		metrics:      metrics,
		logger:       logger,
	}
}

// Run запускает цикл реклейма и блокируется до отмены контекста
// Предназначен для запуска в отдельной горутине
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper: started, interval=%s, grace=%s, batch=%d",
		s.interval, s.grace, s.batchSize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce выполняет один проход реклейма
// Возвращает количество успешно обработанных холдов
// Ошибка по одному холду не прерывает обработку остальных
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	now := s.timeProvider.Now()

	ids, err := s.finder.FindExpiredIDs(ctx, now, s.grace, s.batchSize)
	if err != nil {
		s.logger.Error("Sweeper: failed to find expired holds: %v", err)
		if s.metrics != nil {
			s.metrics.IncSweeperErrors("find")
		}
		return 0
	}

	if len(ids) == 0 {
		return 0
	}

	s.logger.Info("Sweeper: found %d expired holds", len(ids))

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired
		}

		if err := s.expirer.ExpireHold(ctx, id); err != nil {
			s.logger.Error("Sweeper: failed to expire hold id=%d: %v", id, err)
			if s.metrics != nil {
				s.metrics.IncSweeperErrors("expire")
			}
			continue
		}

		expired++
		if s.metrics != nil {
			s.metrics.IncHoldsExpired("expired")
		}
	}

	s.logger.Info("Sweeper: pass complete, expired %d/%d holds", expired, len(ids))
	return expired
}
