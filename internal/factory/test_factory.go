package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/dependencies/mocks"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rating"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App configured for testing with a memory store
// and a fixed mock clock
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, rating.DefaultConfig(), logger)

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
	}
}
