package ballots

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/pkg/ctxutil"
	"github.com/yungbote/voterguide-backend/internal/pkg/httpx"
	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

// Outcome is the result of one provider attempt.
type Outcome string

const (
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeEmpty       Outcome = "empty"
	OutcomeSuccess     Outcome = "success"
)

// State names the fetcher's position in the fallback chain.
type State int

const (
	StatePrimary State = iota
	StateSecondary
	StateTertiary
)

func (s State) String() string {
	switch s {
	case StatePrimary:
		return "try_primary"
	case StateSecondary:
		return "try_secondary"
	case StateTertiary:
		return "try_tertiary"
	default:
		return fmt.Sprintf("try_fallback_%d", int(s))
	}
}

// Attempt records one provider step. Reason is safe to return to callers;
// Error carries the raw provider error and stays in logs.
type Attempt struct {
	Provider   string  `json:"provider"`
	State      string  `json:"state"`
	Outcome    Outcome `json:"outcome"`
	Items      int     `json:"items,omitempty"`
	Cached     bool    `json:"cached,omitempty"`
	DurationMS int64   `json:"durationMs"`
	Reason     string  `json:"reason,omitempty"`
	Error      string  `json:"-"`
}

// FetchReport records every attempt of one Fetch call.
type FetchReport struct {
	Attempts []Attempt `json:"attempts"`
	Source   string    `json:"source,omitempty"`
}

// Exhausted reports whether no provider produced data.
func (r *FetchReport) Exhausted() bool { return r == nil || r.Source == "" }

// Configured counts attempts that were not skipped.
func (r *FetchReport) Configured() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, a := range r.Attempts {
		if a.Outcome != OutcomeSkipped {
			n++
		}
	}
	return n
}

// Hint is user-facing remediation text for an exhausted fetch.
func (r *FetchReport) Hint() string {
	if !r.Exhausted() {
		return ""
	}
	if r.Configured() == 0 {
		return "No ballot data provider is available. Configure GOOGLE_CIVIC_API_KEY, DEMOCRACY_WORKS_API_KEY or BALLOTREADY_API_KEY, and provide an address for Google Civic."
	}
	if r.Configured() == 1 {
		for _, a := range r.Attempts {
			if a.Outcome == OutcomeRateLimited {
				return googlecivic.RateLimitMessage + " Try again later."
			}
		}
	}
	return "No ballot data found for this location. Try providing a specific address or API keys."
}

// Cache stores successful provider results. Failures are never cached.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// AttemptObserver receives one call per provider attempt that was not skipped.
type AttemptObserver interface {
	ObserveProviderAttempt(provider, outcome string, dur time.Duration)
}

type FetcherConfig struct {
	// AttemptTimeout bounds each provider attempt.
	AttemptTimeout time.Duration
	Cache          Cache
	CacheTTL       time.Duration
	Observer       AttemptObserver
}

// Fetcher walks an ordered list of sources and stops at the first one
// that yields at least one ballot item. It keeps no state between calls.
type Fetcher struct {
	log     *logger.Logger
	sources []Source
	cfg     FetcherConfig
	tracer  trace.Tracer
}

func NewFetcher(log *logger.Logger, cfg FetcherConfig, sources ...Source) *Fetcher {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 20 * time.Second
	}
	return &Fetcher{
		log:     log.With("service", "BallotFetcher"),
		sources: sources,
		cfg:     cfg,
		tracer:  otel.Tracer("voterguide/ballots"),
	}
}

// Ready reports whether at least one source would be attempted for req.
func (f *Fetcher) Ready(req FetchRequest) bool {
	for _, src := range f.sources {
		if src.Ready(req) == nil {
			return true
		}
	}
	return false
}

// Fetch returns the first usable ElectionInfo, or nil when every source
// was exhausted. Provider errors never escape; they land in the report.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) (*ElectionInfo, *FetchReport) {
	ctx = ctxutil.Default(ctx)
	report := &FetchReport{Attempts: make([]Attempt, 0, len(f.sources))}

	for i, src := range f.sources {
		state := State(i)
		if ctx.Err() != nil {
			f.log.Warn("Ballot fetch cancelled", "state", state.String(), "error", ctx.Err())
			break
		}
		if err := src.Ready(req); err != nil {
			f.log.Debug("Provider unavailable", "provider", src.Name(), "state", state.String(), "reason", err.Error())
			report.Attempts = append(report.Attempts, Attempt{
				Provider: src.Name(),
				State:    state.String(),
				Outcome:  OutcomeSkipped,
				Reason:   unavailableReason(err),
				Error:    err.Error(),
			})
			continue
		}

		info, attempt := f.attempt(ctx, state, src, req)
		report.Attempts = append(report.Attempts, attempt)
		if attempt.Outcome == OutcomeSuccess {
			report.Source = src.Name()
			if info.Source == "" {
				info.Source = src.Name()
			}
			f.log.Info("Ballot data fetched",
				"provider", src.Name(),
				"jurisdiction", req.JurisdictionName,
				"state", req.State,
				"items", len(info.Items),
				"cached", attempt.Cached,
			)
			return info, report
		}
	}

	f.log.Info("No ballot data from any provider",
		"jurisdiction", req.JurisdictionName,
		"state", req.State,
		"attempts", len(report.Attempts),
	)
	return nil, report
}

func (f *Fetcher) attempt(ctx context.Context, state State, src Source, req FetchRequest) (*ElectionInfo, Attempt) {
	start := time.Now()
	a := Attempt{Provider: src.Name(), State: state.String()}

	ctx, span := f.tracer.Start(ctx, "ballots.provider_attempt", trace.WithAttributes(
		attribute.String("provider", src.Name()),
		attribute.String("fetch.state", state.String()),
		attribute.String("jurisdiction", req.JurisdictionName),
	))
	defer span.End()

	key := cacheKey(src.Name(), req)
	if f.cfg.Cache != nil {
		var cached ElectionInfo
		hit, err := f.cfg.Cache.Get(ctx, key, &cached)
		if err != nil {
			f.log.Warn("Provider cache read failed", "provider", src.Name(), "error", err)
		}
		if hit && len(cached.Items) > 0 {
			a.Outcome, a.Items, a.Cached = OutcomeSuccess, len(cached.Items), true
			a.DurationMS = time.Since(start).Milliseconds()
			span.SetAttributes(attribute.String("outcome", string(a.Outcome)), attribute.Bool("cached", true))
			f.observe(a.Provider, "cache_hit", start)
			return &cached, a
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
	info, err := safeFetch(attemptCtx, src, req)
	cancel()
	a.DurationMS = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		a.Error = err.Error()
		a.Outcome = OutcomeFailed
		if httpx.IsRateLimited(err) {
			a.Outcome = OutcomeRateLimited
		}
		a.Reason = failureReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(a.Outcome))
		f.log.Warn("Provider attempt failed",
			"provider", src.Name(),
			"state", state.String(),
			"outcome", string(a.Outcome),
			"timeout", httpx.IsTimeout(err),
			"error", err,
		)
	case info == nil || len(info.Items) == 0:
		a.Outcome = OutcomeEmpty
		a.Reason = "no contests returned"
		f.log.Info("Provider returned no contests", "provider", src.Name(), "state", state.String())
	default:
		a.Outcome = OutcomeSuccess
		a.Items = len(info.Items)
		if f.cfg.Cache != nil && f.cfg.CacheTTL > 0 {
			if err := f.cfg.Cache.Set(ctx, key, info, f.cfg.CacheTTL); err != nil {
				f.log.Warn("Provider cache write failed", "provider", src.Name(), "error", err)
			}
		}
	}
	span.SetAttributes(attribute.String("outcome", string(a.Outcome)), attribute.Int("items", a.Items))
	f.observe(a.Provider, a.Outcome, start)
	if a.Outcome != OutcomeSuccess {
		return nil, a
	}
	return info, a
}

func (f *Fetcher) observe(provider string, outcome Outcome, start time.Time) {
	if f.cfg.Observer == nil {
		return
	}
	f.cfg.Observer.ObserveProviderAttempt(provider, string(outcome), time.Since(start))
}

// safeFetch converts a provider panic into an error so one broken adapter
// cannot take down the chain.
func safeFetch(ctx context.Context, src Source, req FetchRequest) (info *ElectionInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%s panicked: %v", src.Name(), r)
		}
	}()
	info, err = src.Fetch(ctx, req)
	if err == nil && ctx.Err() != nil && info == nil {
		err = ctx.Err()
	}
	return info, err
}

func cacheKey(provider string, req FetchRequest) string {
	h := sha256.New()
	for _, part := range []string{
		strings.ToLower(strings.TrimSpace(req.Address)),
		strings.ToLower(strings.TrimSpace(req.JurisdictionName)),
		strings.ToUpper(strings.TrimSpace(req.State)),
		strings.TrimSpace(req.ElectionID),
	} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	slug := Slugify(provider)
	return slug + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

func unavailableReason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrUnavailable.Error()+": ")
}

// failureReason never includes upstream text, which may echo request URLs.
func failureReason(err error) string {
	switch {
	case httpx.IsRateLimited(err):
		return "rate limited"
	case httpx.IsTimeout(err):
		return "timed out"
	}
	if status := httpx.StatusOf(err); status != 0 {
		return fmt.Sprintf("upstream returned status %d", status)
	}
	return "request failed"
}

// IsUnavailable reports whether err marks a provider that was not attempted.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
