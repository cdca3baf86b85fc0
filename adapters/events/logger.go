package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// ZerologAdapter routes Watermill's internal logging through zerolog so the
// event plumbing logs in the same shape as the rest of the service.
type ZerologAdapter struct {
	log zerolog.Logger
}

// NewZerologAdapter wraps log as a watermill.LoggerAdapter.
func NewZerologAdapter(log zerolog.Logger) watermill.LoggerAdapter {
	return &ZerologAdapter{log: log}
}

func (a *ZerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	withFields(a.log.Error().Err(err), fields).Msg(msg)
}

func (a *ZerologAdapter) Info(msg string, fields watermill.LogFields) {
	withFields(a.log.Info(), fields).Msg(msg)
}

func (a *ZerologAdapter) Debug(msg string, fields watermill.LogFields) {
	withFields(a.log.Debug(), fields).Msg(msg)
}

func (a *ZerologAdapter) Trace(msg string, fields watermill.LogFields) {
	withFields(a.log.Trace(), fields).Msg(msg)
}

func (a *ZerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	lctx := a.log.With()
	for k, v := range fields {
		lctx = lctx.Interface(k, v)
	}
	return &ZerologAdapter{log: lctx.Logger()}
}

func withFields(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
