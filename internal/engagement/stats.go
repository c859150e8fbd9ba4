package engagement

import (
	"context"
	"sync"
	"time"

	"github.com/streamhub/backend/internal/repositories"
)

type statsEntry struct {
	stats   repositories.ChannelStats
	expires time.Time
}

// StatsService serves channel dashboard aggregates through a TTL-based
// in-memory cache, keyed by channel id.
type StatsService struct {
	stats repositories.StatsRepository
	ttl   time.Duration

	mu    sync.RWMutex
	items map[string]statsEntry
}

// NewStatsService wraps the stats repository with a cache for the provided TTL.
func NewStatsService(stats repositories.StatsRepository, ttl time.Duration) *StatsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsService{
		stats: stats,
		ttl:   ttl,
		items: make(map[string]statsEntry),
	}
}

// ChannelStats returns cached aggregates when fresh, otherwise it queries the
// repository and stores the result.
func (s *StatsService) ChannelStats(ctx context.Context, channelID string) (repositories.ChannelStats, error) {
	channelID, err := CanonicalID(channelID)
	if err != nil {
		return repositories.ChannelStats{}, err
	}

	now := time.Now()

	s.mu.RLock()
	entry, ok := s.items[channelID]
	s.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := s.stats.ChannelStats(ctx, channelID)
	if err != nil {
		return repositories.ChannelStats{}, wrap("channel stats", err)
	}

	s.mu.Lock()
	s.items[channelID] = statsEntry{stats: stats, expires: now.Add(s.ttl)}
	s.mu.Unlock()

	return stats, nil
}

// Invalidate drops the cached entry for a channel, forcing the next read to
// hit the repository.
func (s *StatsService) Invalidate(channelID string) {
	s.mu.Lock()
	delete(s.items, channelID)
	s.mu.Unlock()
}
