package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/warehouse-go/internal/application/mediator"
)

// MockMediator is a test double for the Mediator interface. Responses are
// looked up by request type; SetSendFunc overrides the lookup entirely.
type MockMediator struct {
	mu        sync.Mutex
	sendFunc  func(ctx context.Context, request mediator.Request) (mediator.Response, error)
	responses map[reflect.Type]mockResult
	callLog   []mediator.Request
}

type mockResult struct {
	response mediator.Response
	err      error
}

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{responses: make(map[reflect.Type]mockResult)}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, request)
	fn := m.sendFunc
	result, ok := m.responses[reflect.TypeOf(request)]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, request)
	}
	if !ok {
		return nil, fmt.Errorf("unsupported request type: %T", request)
	}
	return result.response, result.err
}

// Register is accepted and ignored
func (m *MockMediator) Register(requestType reflect.Type, handler mediator.RequestHandler) error {
	return nil
}

// RegisterMiddleware is accepted and ignored
func (m *MockMediator) RegisterMiddleware(middleware mediator.Middleware) {}

// Respond sets the result returned for requests of the same type as request
func (m *MockMediator) Respond(request mediator.Request, response mediator.Response, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[reflect.TypeOf(request)] = mockResult{response: response, err: err}
}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request mediator.Request) (mediator.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// Calls returns every request sent so far
func (m *MockMediator) Calls() []mediator.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mediator.Request(nil), m.callLog...)
}

// LastCall returns the most recent request, or nil
func (m *MockMediator) LastCall() mediator.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callLog) == 0 {
		return nil
	}
	return m.callLog[len(m.callLog)-1]
}
