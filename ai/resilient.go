package ai

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/thisisjofrank/LLM-GM-Practice/domain"
)

// defaultRateLimitWait applies when the provider does not say when to
// come back.
const defaultRateLimitWait = time.Minute

// Status reports which provider is answering and whether the live one
// is currently usable.
type Status struct {
	Provider         string     `json:"provider"`
	Available        bool       `json:"available"`
	RateLimitedUntil *time.Time `json:"rateLimitedUntil,omitempty"`
}

// Resilient arbitrates between a live provider and the canned fallback.
// A rate-limited primary is benched until the limit expires; canned
// responses keep the game moving in the meantime. Other provider errors
// pass through untouched: fallback text is the turn core's decision.
type Resilient struct {
	log      *slog.Logger
	provider string
	primary  domain.Responder
	fallback domain.Responder
	now      func() time.Time

	mu               sync.Mutex
	rateLimitedUntil time.Time
}

// NewResilient wires the primary provider with its canned stand-in.
// A nil primary means the canned responder serves everything (no API
// key configured).
func NewResilient(log *slog.Logger, providerName string, primary, fallback domain.Responder) *Resilient {
	return &Resilient{
		log:      log,
		provider: providerName,
		primary:  primary,
		fallback: fallback,
		now:      time.Now,
	}
}

func (r *Resilient) Generate(ctx context.Context, prompt string) (string, error) {
	if r.primary == nil || r.benched() {
		return r.fallback.Generate(ctx, prompt)
	}

	response, err := r.primary.Generate(ctx, prompt)
	if err == nil {
		return response, nil
	}

	if wait, limited := rateLimitWait(err); limited {
		r.bench(wait)
		r.log.Warn("Provider rate limited, switching to canned responses",
			"provider", r.provider, "wait", wait)
		return r.fallback.Generate(ctx, prompt)
	}

	return "", err
}

// Status is the read-model behind the llm status endpoint.
func (r *Resilient) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := Status{Provider: r.provider, Available: r.primary != nil}
	if until := r.rateLimitedUntil; r.now().Before(until) {
		status.Available = false
		status.RateLimitedUntil = &until
	}
	return status
}

// ResetRateLimit clears the bench manually, for operators who know the
// quota recovered early.
func (r *Resilient) ResetRateLimit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimitedUntil = time.Time{}
	r.log.Info("Rate limit manually reset", "provider", r.provider)
}

func (r *Resilient) benched() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Before(r.rateLimitedUntil)
}

func (r *Resilient) bench(wait time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimitedUntil = r.now().Add(wait)
}

// rateLimitWait inspects a provider error for a 429 and extracts the
// Retry-After hint when present.
func rateLimitWait(err error) (time.Duration, bool) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != 429 {
		return 0, false
	}

	if retryAfter := apiErr.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second, true
		}
	}
	return defaultRateLimitWait, true
}
