package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/buildnotify/internal/config"
	"github.com/shaharia-lab/buildnotify/internal/eventbus"
	"github.com/shaharia-lab/buildnotify/internal/service"
	"github.com/shaharia-lab/buildnotify/internal/storage"
)

// MockNotificationService is a mock implementation of service.NotificationService.
type MockNotificationService struct {
	mock.Mock
}

//nolint:revive
func (m *MockNotificationService) HandleBuildEvent(ctx context.Context, e eventbus.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

//nolint:revive
func (m *MockNotificationService) GetProjectNotifier(ctx context.Context, name string) (*storage.ProjectNotifier, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProjectNotifier), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) UpdateProjectNotifier(ctx context.Context, name string, req service.ProjectNotifierRequest) (*storage.ProjectNotifier, error) {
	args := m.Called(ctx, name, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProjectNotifier), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) DeleteProjectNotifier(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

//nolint:revive
func (m *MockNotificationService) ListProjectNotifiers(ctx context.Context) ([]*storage.ProjectNotifier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.ProjectNotifier), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) GetSiteSettings() service.SiteSettingsResponse {
	args := m.Called()
	return args.Get(0).(service.SiteSettingsResponse)
}

//nolint:revive
func (m *MockNotificationService) UpdateSiteSettings(incoming config.SiteSettings) (service.SiteSettingsResponse, error) {
	args := m.Called(incoming)
	return args.Get(0).(service.SiteSettingsResponse), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) TestNotification(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

//nolint:revive
func (m *MockNotificationService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.NotificationLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) SeedFromRegistry(ctx context.Context, reg *config.NotifierRegistry) (int, error) {
	args := m.Called(ctx, reg)
	return args.Int(0), args.Error(1)
}
