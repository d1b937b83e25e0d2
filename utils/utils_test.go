package utils

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Circuit Breaker Tests

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker() (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test")
	cb.now = clock.Now
	cb.minRequests = 5
	cb.toNewGeneration(clock.Now())
	return cb, clock
}

var errBoom = errors.New("boom")

func TestCircuitBreaker_NewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("pubnub")

	assert.Equal(t, "pubnub", cb.Name())
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0.6, cb.failureRatio)
	assert.Equal(t, Counts{}, cb.Counts())
}

func TestCircuitBreaker_ExecuteSuccessAndFailure(t *testing.T) {
	cb, _ := newTestBreaker()

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, errBoom, cb.Execute(func() error { return errBoom }))

	counts := cb.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterFailureRatio(t *testing.T) {
	cb, _ := newTestBreaker()

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}
	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	// 4 requests is below the minimum volume
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func tripBreaker(t *testing.T, cb *CircuitBreaker) {
	t.Helper()
	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	require.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb, clock := newTestBreaker()
	tripBreaker(t, cb)

	clock.Advance(cb.timeout + time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, Counts{}, cb.Counts())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker()
	tripBreaker(t, cb)

	clock.Advance(cb.timeout + time.Second)
	assert.Equal(t, errBoom, cb.Execute(func() error { return errBoom }))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker()
	tripBreaker(t, cb)
	clock.Advance(cb.timeout + time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrTooManyRequests)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ClosedIntervalResetsCounts(t *testing.T) {
	cb, clock := newTestBreaker()

	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	clock.Advance(cb.interval + time.Second)

	// The stale failures are forgotten, so one more failure does not trip
	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().Requests)
}

func TestCircuitBreaker_PanicRecovery(t *testing.T) {
	cb, _ := newTestBreaker()

	assert.Panics(t, func() {
		_ = cb.Execute(func() error { panic("test panic") })
	})
	assert.Equal(t, uint32(1), cb.Counts().TotalFailures)
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cb.Execute(func() error { return nil })
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(50), cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_StateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

// ID Tests

func TestGenerateItemID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateItemID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// 32 random bits: a collision in 1000 draws is vanishingly unlikely
	assert.Len(t, seen, 1000)
}

// Redis Client Tests

func TestRedisHealthCheck_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")

	err := RedisHealthCheck(db)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthCheck_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetErr(errors.New("connection failed"))

	err := RedisHealthCheck(db)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis health check failed")
	assert.Contains(t, err.Error(), "connection failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
