package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotConnected = errors.New("realtime channel is not connected")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
