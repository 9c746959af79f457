// Package sql holds the small set of types shared by every stage of the
// compilation pipeline: the compilation Context, the TreeIdentity
// transform-result discriminator, and scalar value plumbing. It plays the
// role the teacher's own root sql package plays for go-mysql-server: a
// leaf package every other package in the module imports, never the
// reverse.
package sql

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context wraps a standard context.Context with the tracer and logger used
// across a single compilation. It carries no mutable compiler state of its
// own (that lives in analyzer.PlanCtx) and is safe to pass by value of its
// pointer to every pass.
type Context struct {
	context.Context
	tracer opentracing.Tracer
	log    *logrus.Entry
}

// NewContext builds a compilation Context around a standard context.Context.
// A nil tracer falls back to opentracing.NoopTracer, so Span is always safe
// to call even when no profiling harness is attached.
func NewContext(ctx context.Context, tracer opentracing.Tracer) *Context {
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	return &Context{
		Context: ctx,
		tracer:  tracer,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// NewEmptyContext returns a Context suitable for tests and one-off compiles:
// background context, no-op tracer, default logger.
func NewEmptyContext() *Context {
	return NewContext(context.Background(), nil)
}

// Span starts a new tracing span named name as a child of any span already
// present in ctx, mirroring the per-pass ctx.Span(name) call sites the
// teacher's analyzer uses around every rule.
func (c *Context) Span(name string) (opentracing.Span, *Context) {
	span, goCtx := opentracing.StartSpanFromContextWithTracer(c.Context, c.tracer, name)
	return span, &Context{Context: goCtx, tracer: c.tracer, log: c.log}
}

// Warnf records a non-fatal compilation warning (unresolved forward
// reference, unknown-function passthrough, ...). Warnings never fail
// compilation, per the error handling design.
func (c *Context) Warnf(format string, args ...interface{}) {
	c.log.Warnf(format, args...)
}

// WithLogField returns a Context whose warnings carry an extra structured
// field, e.g. the query id or schema name being compiled.
func (c *Context) WithLogField(key string, value interface{}) *Context {
	return &Context{Context: c.Context, tracer: c.tracer, log: c.log.WithField(key, value)}
}
