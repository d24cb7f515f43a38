package health

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// Status values reported by checks and probes.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a check when New is given zero.
const DefaultCheckTimeout = 5 * time.Second

// CheckFunc reports nil when the component is healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// HealthStatus is the body of the liveness and readiness probes.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Ready reports whether the status allows serving traffic.
func (s HealthStatus) Ready() bool {
	return s.Status == StatusOK || s.Status == StatusReady
}

// ObserverFunc is told the outcome of every check run.
type ObserverFunc func(name string, healthy bool, duration time.Duration)

// ErrCheckTimeout is reported when a check outlives its timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// Checker runs named readiness checks concurrently.
type Checker struct {
	mu       sync.RWMutex
	checks   map[string]CheckFunc
	observer ObserverFunc

	checkTimeout time.Duration
	now          func() time.Time
}

// New creates a checker. A zero timeout means DefaultCheckTimeout.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
		now:          time.Now,
	}
}

// RegisterCheck adds or replaces the check for name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes the check for name.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// SetObserver installs fn to be called after each check. The server uses
// it to feed the backend health gauge.
func (c *Checker) SetObserver(fn ObserverFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// ListChecks returns the registered check names in sorted order.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.checks))
}

// CheckLiveness reports that the process is serving HTTP.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{Status: StatusOK, Timestamp: c.now()}
}

// CheckReadiness runs every registered check and aggregates them. Any
// failing check makes the result degraded.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	observer := c.observer
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := c.now()
			result := c.runCheck(ctx, check)
			if observer != nil {
				observer(name, result.Status == StatusOK, c.now().Sub(start))
			}

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}()
	}
	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status != StatusOK {
			status = StatusDegraded
		}
	}

	return HealthStatus{Status: status, Checks: results, Timestamp: c.now()}
}

func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	var err error
	select {
	case err = <-errChan:
	case <-checkCtx.Done():
		err = ErrCheckTimeout
	}

	result := CheckResult{
		Status:     StatusOK,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}
