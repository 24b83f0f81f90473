package common

import (
	"context"
	"fmt"
	"reflect"
)

// Request is any command or query routed through the mediator,
// e.g. *PlanTripQuery or *RunWorkerCommand.
type Request interface{}

// Response is whatever the handler produced for its request.
type Response interface{}

// RequestHandler processes one request type. Handlers assert the
// concrete type themselves and reject anything else.
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// Mediator routes each request to the single handler registered for
// its concrete type. The CLI and daemon entrypoints never touch
// handlers directly; everything goes through Send.
type Mediator interface {
	Send(ctx context.Context, request Request) (Response, error)
	Register(requestType reflect.Type, handler RequestHandler) error
}

type mediator struct {
	handlers map[reflect.Type]RequestHandler
}

// NewMediator returns an empty mediator. Registration happens once at
// startup in application wiring and is not synchronized.
func NewMediator() Mediator {
	return &mediator{handlers: make(map[reflect.Type]RequestHandler)}
}

// Register binds a handler to a request type. Duplicate registrations
// are a wiring bug, so they fail instead of silently replacing.
func (m *mediator) Register(requestType reflect.Type, handler RequestHandler) error {
	if requestType == nil {
		return fmt.Errorf("request type cannot be nil")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	if _, exists := m.handlers[requestType]; exists {
		return fmt.Errorf("handler already registered for type %s", requestType)
	}
	m.handlers[requestType] = handler
	return nil
}

// Send looks up the handler for the request's concrete type and
// delegates to it.
func (m *mediator) Send(ctx context.Context, request Request) (Response, error) {
	if request == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	requestType := reflect.TypeOf(request)
	handler, ok := m.handlers[requestType]
	if !ok {
		return nil, fmt.Errorf("no handler registered for type %s", requestType)
	}
	return handler.Handle(ctx, request)
}

// RegisterHandler registers a handler keyed by the type parameter, so
// wiring code does not spell out reflect.TypeOf for every request.
func RegisterHandler[T Request](m Mediator, handler RequestHandler) error {
	var zero T
	return m.Register(reflect.TypeOf(zero), handler)
}
