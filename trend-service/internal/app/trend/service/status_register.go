package service

import (
	"sync"

	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/entity"
)

// StatusRegister хранит состояние сбора одним значением под мьютексом.
// Читатели получают копию, запись нескольких полей видна целиком.
type StatusRegister struct {
	mu     sync.RWMutex
	status entity.Status
}

func NewStatusRegister() *StatusRegister {
	return &StatusRegister{}
}

func (r *StatusRegister) Snapshot() entity.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneStatus(r.status)
}

// Update применяет fn к состоянию атомарно и обновляет gauge-метрики
func (r *StatusRegister) Update(fn func(s *entity.Status)) {
	r.mu.Lock()
	fn(&r.status)
	running, progress, active := r.status.Running, r.status.Progress, r.status.SchedulerActive
	r.mu.Unlock()

	metrics.SetScraperState(running, progress)
	metrics.SetSchedulerActive(active)
}

// ReportProgress - колбэк прохода. Пока проход идёт, прогресс не достигает 100:
// это значение выставляется только по завершении.
func (r *StatusRegister) ReportProgress(currentStep, totalSteps, totalFound int) {
	progress := 0
	if totalSteps > 0 {
		progress = currentStep * 100 / totalSteps
	}
	if progress > 99 {
		progress = 99
	}

	r.Update(func(s *entity.Status) {
		if progress > s.Progress {
			s.Progress = progress
		}
		s.TotalFound = totalFound
	})
}

func cloneStatus(s entity.Status) entity.Status {
	out := s
	if s.LastError != nil {
		v := *s.LastError
		out.LastError = &v
	}
	if s.LastRun != nil {
		v := *s.LastRun
		out.LastRun = &v
	}
	if s.NextRun != nil {
		v := *s.NextRun
		out.NextRun = &v
	}
	return out
}
