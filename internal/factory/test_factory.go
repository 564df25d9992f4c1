package factory

import (
	"time"

	"github.com/mcoot/shootout/internal/dependencies/mocks"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/combat"
	"github.com/mcoot/shootout/internal/services/ratelimit"
	"github.com/mcoot/shootout/internal/storage/memory"
	"github.com/mcoot/shootout/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(combat.DefaultConfig())
}

// NewTestAppWithConfig creates a test App with the given engine settings
func NewTestAppWithConfig(engineCfg combat.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	limiter := ratelimit.NewMemory(mockClock, ratelimit.DefaultConfig())

	app := newWithDependencies(store, mockClock, limiter, model.SeedProduction, engineCfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
