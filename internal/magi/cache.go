package magi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/boat-oracle/internal/logger"
	"github.com/yourusername/boat-oracle/internal/metrics"
	"github.com/yourusername/boat-oracle/internal/models"
)

// CacheKey identifies a consensus run by race, card contents and agent line-up
type CacheKey struct {
	Race   string
	Card   string
	Agents string
}

// NewCacheKey derives the key of a race card dispatched to an agent set.
// Card is a digest of the whole card, so a card whose entrants or stats
// changed never shares a key with an earlier version of the same race.
func NewCacheKey(card *models.RaceCard, agents AgentSet) CacheKey {
	race := card.Race
	id := race.ID.String()
	if race.ID == uuid.Nil {
		id = fmt.Sprintf("%s:%s:%d", race.VenueCode+race.VenueName, race.RaceDate, race.RaceNumber)
	}
	return CacheKey{Race: id, Card: cardDigest(card), Agents: agents.Key()}
}

func cardDigest(card *models.RaceCard) string {
	data, err := json.Marshal(card)
	if err != nil {
		// unencodable cards get a unique digest and are never served from cache
		return uuid.NewString()
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return k.Race + "|" + k.Card + "|" + k.Agents
}

// ConsensusCache provides in-memory caching for consensus reports
type ConsensusCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewConsensusCache creates a new consensus cache
func NewConsensusCache(ttl time.Duration, maxSize int) *ConsensusCache {
	return &ConsensusCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a copy of a cached report
func (cc *ConsensusCache) Get(key CacheKey) *models.ConsensusReport {
	result, found := cc.cache.Get(key.String())
	report, ok := result.(*models.ConsensusReport)

	cc.mu.Lock()
	if found && ok {
		cc.hitCount++
	} else {
		cc.missCount++
	}
	ratio := cc.ratioLocked()
	cc.mu.Unlock()

	metrics.UpdateConsensusCacheHitRatio(ratio)
	if found && ok {
		return cloneReport(report)
	}
	return nil
}

// Set stores a copy of report, so later changes by the caller do not reach the cache
func (cc *ConsensusCache) Set(key CacheKey, report *models.ConsensusReport) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.maxSize > 0 && cc.cache.ItemCount() >= cc.maxSize {
		// Remove expired items first
		cc.cache.DeleteExpired()
		if cc.cache.ItemCount() >= cc.maxSize {
			return
		}
	}

	cc.cache.Set(key.String(), cloneReport(report), cc.ttl)
}

// cloneReport copies a report including its agent results and vote map
func cloneReport(r *models.ConsensusReport) *models.ConsensusReport {
	out := *r
	out.Consensus = cloneString(r.Consensus)
	if r.Votes != nil {
		out.Votes = make(map[string]int, len(r.Votes))
		for pick, n := range r.Votes {
			out.Votes[pick] = n
		}
	}
	if r.Agents != nil {
		out.Agents = make([]models.AgentResult, len(r.Agents))
		for i, a := range r.Agents {
			a.Pick = cloneString(a.Pick)
			a.Analysis = cloneString(a.Analysis)
			a.Confidence = cloneString(a.Confidence)
			a.Error = cloneString(a.Error)
			out.Agents[i] = a
		}
	}
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Clear flushes the entire cache
func (cc *ConsensusCache) Clear() {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.cache.Flush()
	cc.hitCount = 0
	cc.missCount = 0
}

// Stats returns cache statistics
func (cc *ConsensusCache) Stats() (hits, misses uint64, ratio float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.hitCount, cc.missCount, cc.ratioLocked()
}

func (cc *ConsensusCache) ratioLocked() float64 {
	total := cc.hitCount + cc.missCount
	if total == 0 {
		return 0
	}
	return float64(cc.hitCount) / float64(total)
}

// ItemCount returns the number of items in cache
func (cc *ConsensusCache) ItemCount() int {
	return cc.cache.ItemCount()
}

// CachedOrchestrator serves repeated consensus requests for the same race and
// agent line-up from cache. Runs in which no agent succeeded are not cached.
type CachedOrchestrator struct {
	next  Runner
	cache *ConsensusCache
	log   *logger.AgentLogger
}

// NewCachedOrchestrator wraps a runner with a cache. log may be nil.
func NewCachedOrchestrator(next Runner, c *ConsensusCache, log *logger.AgentLogger) *CachedOrchestrator {
	return &CachedOrchestrator{next: next, cache: c, log: log}
}

// Run returns a cached report when one exists, otherwise delegates
func (co *CachedOrchestrator) Run(ctx context.Context, card *models.RaceCard, agents AgentSet) (*models.ConsensusReport, error) {
	key := NewCacheKey(card, agents)
	if hit := co.cache.Get(key); hit != nil {
		hit.Cached = true
		if co.log != nil {
			co.log.LogConsensusCacheHit(key.String(), hit.RunID.String())
		}
		return hit, nil
	}

	report, err := co.next.Run(ctx, card, agents)
	if err != nil {
		return nil, err
	}
	if report.SuccessCount > 0 {
		co.cache.Set(key, report)
	}
	return report, nil
}
