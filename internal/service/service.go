// Package service implements the reading tracker's business logic on top of the store.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/readupapp/readup-server/internal/domain"
	domainerrors "github.com/readupapp/readup-server/internal/errors"
	"github.com/readupapp/readup-server/internal/sse"
	"github.com/readupapp/readup-server/internal/store"
)

var tracer = otel.Tracer("github.com/readupapp/readup-server/internal/service")

// EventEmitter publishes change notifications to connected clients.
type EventEmitter interface {
	Emit(event sse.Event)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(sse.Event) {}

// LifetimeRollup keeps running per-user totals outside the relational store.
type LifetimeRollup interface {
	Get(ctx context.Context, userID string) (*domain.LifetimeStats, error)
	RecordSession(ctx context.Context, userID string, seconds int64, day string) error
	AddBooksFinished(ctx context.Context, userID string, delta int64) error
	Delete(ctx context.Context, userID string) error
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// storeError converts persistence failures into coded domain errors.
func storeError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFoundMsg)
	case errors.Is(err, store.ErrBusy):
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "storage is busy, retry shortly")
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Wrap(err, domainerrors.CodeConflict, "already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "storage error")
	}
}

// endSpan records err on span (when non-nil) and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
