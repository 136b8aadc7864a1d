// Package lookup sequences identifier validation, portal navigation
// and classification for one query, and maps internal failures to
// caller-facing outcomes.
package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"transparencia-rpa/internal/bond"
	"transparencia-rpa/internal/browser"
	"transparencia-rpa/internal/cpf"
	"transparencia-rpa/internal/observability"
	"transparencia-rpa/internal/portal"
)

// Session is a live navigation context owned by the session manager.
type Session interface {
	Context() context.Context
	Fatal() bool
	Release()
}

// SessionSource hands out sessions and recreates the browser after a
// fatal loss.
type SessionSource interface {
	Acquire(ctx context.Context) (Session, error)
	Recycle()
}

// Navigator performs one portal lookup on the session context.
type Navigator interface {
	Lookup(ctx context.Context, cpfDigits string) ([]bond.Bond, error)
}

// Service is the query orchestrator. Idempotent from the caller's
// perspective: repeating an identifier only changes the answer if the
// portal's data changed.
type Service struct {
	sessions SessionSource
	nav      Navigator
	log      *zap.Logger
}

// NewService wires the orchestrator.
func NewService(sessions SessionSource, nav Navigator, log *zap.Logger) *Service {
	return &Service{sessions: sessions, nav: nav, log: log}
}

// Query validates the raw identifier, runs the lookup and classifies
// the extracted bonds. Queries are correlated in logs by a generated
// id; the identifier itself is never logged.
func (s *Service) Query(ctx context.Context, rawCPF string) (bond.Result, error) {
	log := s.log.With(zap.String("query_id", uuid.NewString()))

	digits, err := cpf.Normalize(rawCPF)
	if err != nil {
		observability.LookupsTotal.WithLabelValues(string(CategoryInvalidIdentifier)).Inc()
		log.Info("identifier rejected before navigation")
		return bond.Result{}, &Error{Category: CategoryInvalidIdentifier, Cause: err}
	}

	start := time.Now()
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		observability.LookupsTotal.WithLabelValues(string(CategoryLookupFailed)).Inc()
		observability.NavigationFailures.WithLabelValues("session_init").Inc()
		log.Error("session acquisition failed", zap.Error(err))
		return bond.Result{}, &Error{Category: CategoryLookupFailed, Kind: "session_init", Cause: err}
	}
	defer sess.Release()

	bonds, err := s.nav.Lookup(sess.Context(), digits)
	if err != nil {
		if sess.Fatal() {
			s.sessions.Recycle()
		}
		kind := navKind(err)
		observability.LookupsTotal.WithLabelValues(string(CategoryLookupFailed)).Inc()
		observability.NavigationFailures.WithLabelValues(kind).Inc()
		log.Error("portal lookup failed", zap.String("kind", kind), zap.Error(err))
		return bond.Result{}, &Error{Category: CategoryLookupFailed, Kind: kind, Cause: err}
	}

	result := bond.Classify(bonds)
	observability.LookupsTotal.WithLabelValues(string(result.Outcome)).Inc()
	observability.LookupDuration.Observe(time.Since(start).Seconds())
	log.Info("lookup completed",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("bonds", len(bonds)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// navKind extracts the navigation failure mode for metrics and logs.
func navKind(err error) string {
	var nav *portal.NavError
	if errors.As(err, &nav) {
		return string(nav.Kind)
	}
	return string(CategoryInternal)
}

// browserSessions adapts the concrete browser manager to the
// SessionSource interface.
type browserSessions struct {
	m *browser.Manager
}

// NewBrowserSessions wraps a browser manager as a SessionSource.
func NewBrowserSessions(m *browser.Manager) SessionSource {
	return browserSessions{m: m}
}

func (b browserSessions) Acquire(ctx context.Context) (Session, error) {
	sess, err := b.m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (b browserSessions) Recycle() {
	b.m.Recycle()
}
