package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/buildnotify/internal/notification"
)

// MockTransport is a mock implementation of notification.Transport.
type MockTransport struct {
	mock.Mock
}

//nolint:revive
func (m *MockTransport) Name() string {
	args := m.Called()
	return args.String(0)
}

//nolint:revive
func (m *MockTransport) Send(ctx context.Context, msg notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

//nolint:revive
func (m *MockTransport) Settings() []notification.Setting {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]notification.Setting)
}
