package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/dutyledger/internal/dependencies/mocks"
	"github.com/mcoot/dutyledger/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs("id")

	app := newWithDependencies(store, mockClock, mockIDs, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
