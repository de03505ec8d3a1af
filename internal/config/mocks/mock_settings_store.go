package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/buildnotify/internal/config"
)

// MockSiteSettingsStore is a mock implementation of config.SiteSettingsStore.
type MockSiteSettingsStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockSiteSettingsStore) Load() (config.SiteSettings, error) {
	args := m.Called()
	return args.Get(0).(config.SiteSettings), args.Error(1)
}

//nolint:revive
func (m *MockSiteSettingsStore) Save(settings config.SiteSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}
