package factory

import (
	"time"

	"github.com/mcoot/tycoon-backend/internal/dependencies/mocks"
	"github.com/mcoot/tycoon-backend/internal/metrics"
	"github.com/mcoot/tycoon-backend/internal/services/auth"
	"github.com/mcoot/tycoon-backend/internal/services/session"
	"github.com/mcoot/tycoon-backend/internal/storage/memory"
	"github.com/mcoot/tycoon-backend/internal/testutil"
)

// TestSecret signs tokens issued by a TestApp
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Metrics are enabled so tests can assert on counters.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	sessionCfg := session.DefaultConfig()
	sessionCfg.Secret = TestSecret

	app, err := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		metrics.New(),
		testutil.FastHasher(),
		sessionCfg,
		auth.DefaultConfig(),
		testutil.NopLogger(),
	)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}

// QueuePassphrase makes the next generated passphrase deterministic.
// adjective and noun index the word lists, suffix is in [10, 99].
func (t *TestApp) QueuePassphrase(adjective, noun, suffix int) {
	t.MockRandom.QueueIntn(adjective, noun, suffix-10)
}
