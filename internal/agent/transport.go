package agent

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for provider HTTP clients
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // consecutive failures before the breaker opens
	CircuitCooldown   time.Duration
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           90 * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      500 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         2.0,
		CircuitBreakerMax: 5,
		CircuitCooldown:   30 * time.Second,
	}
}

// rateLimitedTransport throttles outbound requests and trips a breaker after
// repeated transport failures.
type rateLimitedTransport struct {
	base              http.RoundTripper
	limiter           *rate.Limiter
	circuitBreakerMax int
	cooldown          time.Duration
	logger            *logrus.Entry

	mu                sync.Mutex
	consecutiveErrors int
	openedAt          time.Time
	lastError         error
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.checkBreaker(); err != nil {
		return nil, err
	}

	if err := t.limiter.Wait(req.Context()); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := t.base.RoundTrip(req)
	t.record(req, resp, err)
	return resp, err
}

func (t *rateLimitedTransport) checkBreaker() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.openedAt.IsZero() {
		return nil
	}
	if time.Since(t.openedAt) >= t.cooldown {
		t.openedAt = time.Time{}
		t.consecutiveErrors = 0
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCircuitOpen, t.lastError)
}

func (t *rateLimitedTransport) record(req *http.Request, resp *http.Response, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil && resp.StatusCode < 500 {
		t.consecutiveErrors = 0
		return
	}
	// cancelled or timed-out calls are not counted against the provider
	if req.Context().Err() != nil {
		return
	}
	if err == nil {
		err = fmt.Errorf("status %d", resp.StatusCode)
	}

	t.consecutiveErrors++
	t.lastError = err
	if t.circuitBreakerMax > 0 && t.consecutiveErrors >= t.circuitBreakerMax && t.openedAt.IsZero() {
		t.openedAt = time.Now()
		t.logger.Warnf("Circuit breaker opened after %d consecutive errors: %v", t.consecutiveErrors, err)
	}
}

// NewHTTPClient builds the retrying, rate-limited client used by one provider
func NewHTTPClient(cfg HTTPClientConfig, logger *logrus.Entry) *http.Client {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = logrus.NewEntry(l)
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultHTTPClientConfig().RateLimit
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.HTTPClient.Transport = &rateLimitedTransport{
		base:              http.DefaultTransport,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		cooldown:          cfg.CircuitCooldown,
		logger:            logger,
	}
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	// hand the final response to the provider SDK so it can decode the API error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger}

	return retryClient.StandardClient()
}

// retryLogger routes retryablehttp's leveled output into logrus
type retryLogger struct {
	entry *logrus.Entry
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Error(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Warn(msg)
}

func kvFields(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}

		// Retry on rate limit (429) and transient server errors
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
