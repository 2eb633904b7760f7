package factory

import (
	"sync"

	"github.com/mcoot/racesync/internal/dependencies/mocks"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/modbridge"
	"github.com/mcoot/racesync/internal/storage/memory"
	"github.com/mcoot/racesync/internal/testutil"
	"github.com/mcoot/racesync/internal/view"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockScheduler *mocks.MockScheduler
	Recorder      *view.Recorder
	Mod           *modbridge.LineLog
	Sent          *SentCommands
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Nothing runs in the background: drive the session with Dispatch and Input
// and fire timers with MockScheduler.Advance.
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(mocks.Epoch)
	recorder := view.NewRecorder()
	sent := &SentCommands{}
	mod := modbridge.NewLineLog()

	deps := dependencies{
		store:     memory.New(),
		clock:     mockClock,
		scheduler: mocks.NewMockScheduler(mockClock),
		sender:    sent,
		mod:       mod,
	}
	app := newWithDependencies(Config{Renderer: recorder}, deps, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockScheduler: deps.scheduler.(*mocks.MockScheduler),
		Recorder:      recorder,
		Mod:           mod,
		Sent:          sent,
	}
}

// SentCommands records outbound commands instead of sending them
type SentCommands struct {
	mu       sync.Mutex
	commands []model.Command
	closed   bool
}

func (s *SentCommands) Send(cmd model.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	return nil
}

func (s *SentCommands) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Commands returns a copy of everything sent so far
func (s *SentCommands) Commands() []model.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Command(nil), s.commands...)
}

// Closed reports whether the session closed the connection
func (s *SentCommands) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
