package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trenddrop/pkg/logger"
	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/entity"

	"github.com/google/uuid"
)

const (
	StartStatusSuccess = "success"
	StartStatusQueued  = "queued"
)

type StartResult struct {
	Status  string
	Message string
	Target  int
	State   entity.Status
}

// ScraperService - одноместная очередь проходов сбора.
// Пока проход идёт, обычный запуск отклоняется, а принудительный
// откладывает ровно один следующий проход (повторные запросы схлопываются).
type ScraperService struct {
	ingestion     IngestionRunner
	status        *StatusRegister
	defaultTarget int
	rootCtx       context.Context
	now           func() time.Time

	mu           sync.Mutex
	running      bool
	queued       bool
	queuedTarget int
	wg           sync.WaitGroup
}

// NewScraperService создаёт раннер; проходы живут в rootCtx, его отмена прерывает шаг
func NewScraperService(rootCtx context.Context, ingestion IngestionRunner, status *StatusRegister, defaultTarget int) *ScraperService {
	return &ScraperService{
		ingestion:     ingestion,
		status:        status,
		defaultTarget: defaultTarget,
		rootCtx:       rootCtx,
		now:           time.Now,
	}
}

// Start запускает проход до count товаров (0 - значение по умолчанию)
func (s *ScraperService) Start(ctx context.Context, count int, force bool) (StartResult, error) {
	if err := ctx.Err(); err != nil {
		return StartResult{}, err
	}

	target := count
	if target <= 0 {
		target = s.defaultTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		if !force {
			return StartResult{State: s.status.Snapshot(), Target: target}, ErrAlreadyRunning
		}

		s.queued = true
		s.queuedTarget = target
		s.status.Update(func(st *entity.Status) {
			st.Queued = true
		})

		logger.Info().Int("target", target).Msg("Scraper busy, follow-up pass queued")
		return StartResult{
			Status:  StartStatusQueued,
			Message: fmt.Sprintf("Scraper is running, a follow-up pass for %d products is queued", target),
			Target:  target,
			State:   s.status.Snapshot(),
		}, nil
	}

	s.running = true
	passID := uuid.NewString()
	s.status.Update(func(st *entity.Status) {
		beginPass(st, passID)
	})

	s.wg.Add(1)
	go s.loop(target, passID)

	return StartResult{
		Status:  StartStatusSuccess,
		Message: fmt.Sprintf("Scraper started, looking for %d products", target),
		Target:  target,
		State:   s.status.Snapshot(),
	}, nil
}

// loop выполняет проход и, если есть отложенный, сразу следующий
func (s *ScraperService) loop(target int, passID string) {
	defer s.wg.Done()

	for {
		found, err := s.runPass(target, passID)

		s.mu.Lock()
		next := s.queued
		if next {
			target = s.queuedTarget
			s.queued = false
		} else {
			s.running = false
		}
		nextPassID := uuid.NewString()

		finishedAt := s.now()
		s.status.Update(func(st *entity.Status) {
			finishPass(st, found, err, finishedAt)
			if next {
				// Ошибка остаётся видна, пока отложенный проход не завершится
				prevErr := st.LastError
				beginPass(st, nextPassID)
				st.LastError = prevErr
			}
		})
		s.mu.Unlock()

		if !next {
			return
		}
		passID = nextPassID
	}
}

func (s *ScraperService) runPass(target int, passID string) (int, error) {
	ctx := WithPassID(s.rootCtx, passID)
	start := s.now()

	logger.Info().Str("pass_id", passID).Int("target", target).Msg("Scraper pass started")

	found, err := s.ingestion.Run(ctx, target, s.status.ReportProgress)

	status := "completed"
	switch {
	case errors.Is(err, context.Canceled):
		status = "canceled"
	case err != nil:
		status = "failed"
	}
	metrics.RecordIngestionPass(status, s.now().Sub(start))

	if err != nil {
		logger.Error().Err(err).Str("pass_id", passID).Int("found", found).Msg("Scraper pass failed")
	} else {
		logger.Info().Str("pass_id", passID).Int("found", found).Msg("Scraper pass completed")
	}

	return found, err
}

func beginPass(st *entity.Status, passID string) {
	st.Running = true
	st.Progress = 0
	st.TotalFound = 0
	st.LastError = nil
	st.Queued = false
	st.PassID = passID
}

func finishPass(st *entity.Status, found int, err error, at time.Time) {
	st.Running = false
	st.TotalFound = found
	if err != nil {
		msg := err.Error()
		st.LastError = &msg
		return
	}
	st.LastError = nil
	st.Progress = 100
	st.LastRun = &at
}

// Stop остановка прохода не поддерживается
func (s *ScraperService) Stop() error {
	return ErrStopNotImplemented
}

func (s *ScraperService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ScraperService) Status() entity.Status {
	return s.status.Snapshot()
}

// Wait блокируется, пока не завершатся текущий и отложенный проходы
func (s *ScraperService) Wait() {
	s.wg.Wait()
}
