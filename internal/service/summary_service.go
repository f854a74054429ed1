package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const summaryCacheKey = "helpdesk:summary"

// SummaryCache stores serialized summaries with a TTL. Implemented by the
// Redis wrapper in persistence.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SummaryService tallies tickets per lifecycle state across the whole
// collection. The count is global, not scoped to the caller's visibility.
type SummaryService struct {
	tickets repository.TicketRepository
	cache   SummaryCache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSummaryService constructs the aggregator. Cache may be nil, in which
// case every call performs the full scan.
func NewSummaryService(tickets repository.TicketRepository, cache SummaryCache, ttl time.Duration, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SummaryService{tickets: tickets, cache: cache, ttl: ttl, logger: logger}
}

// Summarize returns per-status counts over all tickets. Every status is
// present in the result, zeros included. Cache failures degrade to the scan.
func (s *SummaryService) Summarize(ctx context.Context) (domain.Summary, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return domain.Summary{}, err
	}

	var summary domain.Summary
	for _, ticket := range tickets {
		summary.Add(ticket.Status)
	}

	s.toCache(ctx, summary)
	return summary, nil
}

// RegisterInvalidation drops the cached summary whenever a ticket is
// created, transitioned or deleted.
func (s *SummaryService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, _ events.Event) error {
		s.Invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, handler)
	dispatcher.Subscribe(events.EventTicketStatusChanged, handler)
	dispatcher.Subscribe(events.EventTicketDeleted, handler)
}

// Invalidate drops the cached summary after a write.
func (s *SummaryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey); err != nil {
		s.logger.Warn("summary cache invalidate failed", zap.Error(err))
	}
}

func (s *SummaryService) fromCache(ctx context.Context) (domain.Summary, bool) {
	if s.cache == nil {
		return domain.Summary{}, false
	}
	raw, ok, err := s.cache.Get(ctx, summaryCacheKey)
	if err != nil {
		s.logger.Warn("summary cache read failed", zap.Error(err))
		return domain.Summary{}, false
	}
	if !ok {
		return domain.Summary{}, false
	}
	var summary domain.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return domain.Summary{}, false
	}
	return summary, true
}

func (s *SummaryService) toCache(ctx context.Context, summary domain.Summary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryCacheKey, string(raw), s.ttl); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
}
