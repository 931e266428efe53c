package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deweni2/telegram-video-bot/internal/core/domain"
	"github.com/deweni2/telegram-video-bot/internal/pkg/logger"
)

const (
	defaultCleanupInterval = time.Hour
	defaultIdleTTL         = 24 * time.Hour
)

// TokenBucketLimiter реализует token bucket для каждого пользователя
type TokenBucketLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	buckets map[int64]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	_ domain.RateLimiterInterface      = (*TokenBucketLimiter)(nil)
	_ domain.GracefulShutdownInterface = (*TokenBucketLimiter)(nil)
)

// NewTokenBucketLimiter разрешает requests запросов за window на пользователя,
// токены пополняются равномерно
func NewTokenBucketLimiter(requests int, window time.Duration) *TokenBucketLimiter {
	l := newLimiter(requests, window, time.Now)
	go l.cleanup(defaultCleanupInterval)
	return l
}

func newLimiter(requests int, window time.Duration, now func() time.Time) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		idleTTL: defaultIdleTTL,
		now:     now,
		buckets: make(map[int64]*bucket),
		stop:    make(chan struct{}),
	}
}

// Allow проверяет, разрешен ли запрос для пользователя
func (l *TokenBucketLimiter) Allow(userID int64) bool {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[userID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		return true
	}
	logger.Log.WithField("user_id", userID).Debug("Rate limit exceeded")
	return false
}

// cleanup удаляет buckets, которые давно не использовались
func (l *TokenBucketLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			removed := l.evictIdle()
			logger.Log.WithField("removed", removed).Debug("Rate limiter cleanup completed")
		}
	}
}

func (l *TokenBucketLimiter) evictIdle() int {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for userID, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, userID)
			removed++
		}
	}
	return removed
}

func (l *TokenBucketLimiter) Shutdown(_ context.Context) error {
	l.stopOnce.Do(func() { close(l.stop) })
	return nil
}

func (*TokenBucketLimiter) Name() string {
	return "rate_limiter"
}

// NoOpRateLimiter не ограничивает запросы
type NoOpRateLimiter struct{}

func NewNoOpRateLimiter() *NoOpRateLimiter {
	return &NoOpRateLimiter{}
}

func (*NoOpRateLimiter) Allow(_ int64) bool { return true }
