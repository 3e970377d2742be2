package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trenddrop/pkg/logger"
	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/service"

	"github.com/robfig/cron/v3"
)

// ProductCounter возвращает текущее количество товаров в каталоге
type ProductCounter interface {
	CountProducts(ctx context.Context) (int64, error)
}

type SchedulerConfig struct {
	Spec               string // cron-выражение, например "@every 1h"
	MaxProducts        int
	AutoStartThreshold int
}

// CronScheduler периодически дополняет каталог до MaxProducts.
// Состояние ACTIVE/INACTIVE - наличие записи в cron; деактивация снимает её сразу.
type CronScheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	scraper  service.ScraperServiceInterface
	counter  ProductCounter
	status   *service.StatusRegister
	cfg      SchedulerConfig
	ctx      context.Context
	now      func() time.Time

	mu      sync.Mutex
	entryID cron.EntryID
	active  bool
	started bool
}

func NewCronScheduler(
	ctx context.Context,
	cfg SchedulerConfig,
	scraper service.ScraperServiceInterface,
	counter ProductCounter,
	status *service.StatusRegister,
) (*CronScheduler, error) {
	schedule, err := cron.ParseStandard(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler spec %q: %w", cfg.Spec, err)
	}

	l := cronLogger{}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	return &CronScheduler{
		cron:     c,
		schedule: schedule,
		scraper:  scraper,
		counter:  counter,
		status:   status,
		cfg:      cfg,
		ctx:      ctx,
		now:      time.Now,
	}, nil
}

// Activate регистрирует задачу; false без ошибки - планировщик уже активен
func (s *CronScheduler) Activate() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return false, nil
	}

	s.entryID = s.cron.Schedule(s.schedule, cron.FuncJob(s.tick))
	s.active = true
	if !s.started {
		s.cron.Start()
		s.started = true
	}

	next := s.schedule.Next(s.now())
	s.status.Update(func(st *entity.Status) {
		st.SchedulerActive = true
		st.NextRun = &next
	})

	logger.Info().Str("spec", s.cfg.Spec).Time("next_run", next).Msg("Scheduler activated")
	return true, nil
}

// Deactivate снимает задачу; false - планировщик уже был неактивен
func (s *CronScheduler) Deactivate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.active
	if s.active {
		s.cron.Remove(s.entryID)
		s.active = false
		logger.Info().Msg("Scheduler deactivated")
	}

	s.status.Update(func(st *entity.Status) {
		st.SchedulerActive = false
		st.NextRun = nil
	})

	return changed
}

func (s *CronScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Bootstrap при старте процесса запускает проход, если каталог почти пуст
func (s *CronScheduler) Bootstrap(ctx context.Context) (bool, error) {
	count, err := s.counter.CountProducts(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count products: %w", err)
	}

	if count >= int64(s.cfg.AutoStartThreshold) {
		logger.Info().Int64("count", count).Msg("Catalog populated, auto-start skipped")
		return false, nil
	}

	logger.Info().
		Int64("count", count).
		Int("threshold", s.cfg.AutoStartThreshold).
		Msg("Catalog below auto-start threshold, starting scraper")

	if _, err := s.scraper.Start(ctx, s.cfg.MaxProducts, false); err != nil {
		if errors.Is(err, service.ErrAlreadyRunning) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// tick - одно срабатывание cron
func (s *CronScheduler) tick() {
	defer s.refreshNextRun()

	if s.scraper.Running() {
		logger.Info().Msg("Scheduler: scraper already running, tick skipped")
		return
	}

	count, err := s.counter.CountProducts(s.ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Scheduler: failed to count products")
		s.recordError(err)
		return
	}

	if count >= int64(s.cfg.MaxProducts) {
		logger.Info().Int64("count", count).Msg("Scheduler: catalog full, scraper not started")
		return
	}

	logger.Info().Int64("count", count).Msg("Scheduler: starting scraper")
	if _, err := s.scraper.Start(s.ctx, s.cfg.MaxProducts, false); err != nil && !errors.Is(err, service.ErrAlreadyRunning) {
		logger.Error().Err(err).Msg("Scheduler: failed to start scraper")
		s.recordError(err)
	}
}

func (s *CronScheduler) refreshNextRun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	next := s.schedule.Next(s.now())
	s.status.Update(func(st *entity.Status) {
		st.NextRun = &next
	})
}

func (s *CronScheduler) recordError(err error) {
	msg := err.Error()
	s.status.Update(func(st *entity.Status) {
		st.LastError = &msg
	})
}

// Stop останавливает cron и ждёт завершения выполняющихся задач
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return
	}

	logger.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет сообщения cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
