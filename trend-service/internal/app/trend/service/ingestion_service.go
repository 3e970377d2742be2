package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"trenddrop/pkg/logger"
	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/entity"
	"trenddrop/trend-service/internal/app/trend/infrastructure"
	"trenddrop/trend-service/internal/app/trend/repository"
)

const (
	maxSteps       = 100
	publishTimeout = 5 * time.Second
	cacheTimeout   = 2 * time.Second
)

type passIDKey struct{}

// WithPassID помечает контекст идентификатором прохода для логов и событий
func WithPassID(ctx context.Context, passID string) context.Context {
	return context.WithValue(ctx, passIDKey{}, passID)
}

func PassIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(passIDKey{}).(string)
	return id
}

// IngestionService генерирует кандидатов и сверяет их с каталогом
type IngestionService struct {
	products  repository.ProductRepository
	cache     repository.CacheRepository
	publisher infrastructure.MessagePublisher
	generator *Generator
	stepDelay time.Duration

	mu sync.Mutex // генератор не потокобезопасен
}

func NewIngestionService(
	products repository.ProductRepository,
	cache repository.CacheRepository,
	publisher infrastructure.MessagePublisher,
	generator *Generator,
	stepDelay time.Duration,
) *IngestionService {
	return &IngestionService{
		products:  products,
		cache:     cache,
		publisher: publisher,
		generator: generator,
		stepDelay: stepDelay,
	}
}

// Run дополняет каталог до target товаров и возвращает число новых.
// Работа делится не более чем на 100 шагов; после каждого вызывается progress,
// последний вызов всегда сообщает currentStep == totalSteps.
// Ошибка прерывает проход, уже сохранённые товары остаются.
func (s *IngestionService) Run(ctx context.Context, target int, progress ProgressFunc) (int, error) {
	if progress == nil {
		progress = func(int, int, int) {}
	}
	passID := PassIDFromContext(ctx)

	count, err := s.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	needed := target - int(count)
	if needed <= 0 {
		logger.Info().
			Str("pass_id", passID).
			Int64("count", count).
			Int("target", target).
			Msg("Catalog already full, nothing to ingest")
		progress(1, 1, 0)
		return 0, nil
	}

	totalSteps := needed
	if totalSteps > maxSteps {
		totalSteps = maxSteps
	}
	batchSize := needed / totalSteps
	if batchSize < 1 {
		batchSize = 1
	}

	logger.Info().
		Str("pass_id", passID).
		Int("needed", needed).
		Int("steps", totalSteps).
		Msg("Starting ingestion pass")

	found, processed := 0, 0
	changed := false
	defer func() {
		if changed {
			s.invalidateCache(ctx)
		}
	}()

	for step := 0; step < totalSteps; step++ {
		size := batchSize
		if step == totalSteps-1 {
			size = needed - processed
		}

		if err := sleepContext(ctx, s.stepDelay); err != nil {
			return found, err
		}

		events := make([]infrastructure.Message, 0, size)
		for i := 0; i < size; i++ {
			candidate := s.nextCandidate()

			result, err := s.products.Upsert(ctx, candidate, func(existing *entity.Product) *entity.ProductPatch {
				return BuildPatch(existing, candidate)
			})
			if err != nil {
				metrics.RecordIngestionCandidate("failed")
				return found, fmt.Errorf("failed to upsert %q (%s): %w", candidate.Name, candidate.Category, err)
			}
			metrics.RecordIngestionCandidate(result.Outcome.String())

			switch result.Outcome {
			case repository.OutcomeInserted:
				found++
				changed = true
				events = appendEvent(events, entity.EventProductDiscovered, result.ProductID, candidate, passID)
			case repository.OutcomeUpdated:
				changed = true
				events = appendEvent(events, entity.EventProductTrendUpdated, result.ProductID, candidate, passID)
			}
		}
		processed += size

		s.publish(ctx, events)
		progress(step+1, totalSteps, found)
	}

	logger.Info().
		Str("pass_id", passID).
		Int("found", found).
		Int("processed", processed).
		Msg("Ingestion pass finished")

	return found, nil
}

func (s *IngestionService) nextCandidate() *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator.Generate(s.generator.NextCombination())
}

func appendEvent(events []infrastructure.Message, eventType string, productID uint, p *entity.Product, passID string) []infrastructure.Message {
	value, err := json.Marshal(entity.ProductEvent{
		EventType:  eventType,
		ProductID:  productID,
		Name:       p.Name,
		Category:   p.Category,
		TrendScore: p.TrendScore,
		PassID:     passID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		logger.Warn().Err(err).Uint("product_id", productID).Msg("Failed to marshal product event")
		return events
	}
	return append(events, infrastructure.Message{Key: strconv.FormatUint(uint64(productID), 10), Value: value})
}

// publish отправляет события шага; ошибки брокера не прерывают проход
func (s *IngestionService) publish(ctx context.Context, events []infrastructure.Message) {
	if s.publisher == nil || len(events) == 0 {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.PublishMessages(pubCtx, events...); err != nil {
		logger.Warn().
			Err(err).
			Str("pass_id", PassIDFromContext(ctx)).
			Int("events", len(events)).
			Msg("Failed to publish product events")
	}
}

func (s *IngestionService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()

	if err := s.cache.Invalidate(cacheCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
