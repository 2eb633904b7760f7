package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/racesync/internal/dependencies/mocks"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/testutil"
)

type GateSuite struct {
	suite.Suite
	state     *model.SessionState
	clock     *mocks.MockClock
	scheduler *mocks.MockScheduler
	gate      *Gate
	ran       []string
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.state = model.NewSessionState(false)
	s.state.Screen = model.ScreenLobby
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.scheduler = mocks.NewMockScheduler(s.clock)
	s.gate = New(s.state, s.scheduler, testutil.NopLogger())
	s.ran = nil
}

func (s *GateSuite) record(name string) func() {
	return func() { s.ran = append(s.ran, name) }
}

func (s *GateSuite) TestRunsImmediatelyWhenSettled() {
	s.gate.Run("a", s.record("a"))

	s.Equal([]string{"a"}, s.ran)
	s.Equal(0, s.scheduler.Pending())
}

func (s *GateSuite) TestDefersDuringTransition() {
	s.state.Screen = model.ScreenTransition

	s.gate.Run("a", s.record("a"))
	s.Empty(s.ran)
	s.Equal(1, s.gate.Pending())

	s.state.Screen = model.ScreenRace
	s.scheduler.Advance(FadeTime + Leeway)

	s.Equal([]string{"a"}, s.ran)
	s.Equal(0, s.gate.Pending())
}

func (s *GateSuite) TestPreservesOrder() {
	s.state.Screen = model.ScreenTransition
	s.gate.Run("a", s.record("a"))
	s.gate.Run("b", s.record("b"))
	s.gate.Run("c", s.record("c"))

	s.state.Screen = model.ScreenLobby
	s.scheduler.Advance(FadeTime + Leeway)

	s.Equal([]string{"a", "b", "c"}, s.ran)
}

func (s *GateSuite) TestArmsSingleRetryTimer() {
	s.state.Screen = model.ScreenTransition
	s.gate.Run("a", s.record("a"))
	s.gate.Run("b", s.record("b"))

	s.Equal(1, s.scheduler.Pending())
}

func (s *GateSuite) TestLongTransitionKeepsRetrying() {
	s.state.Screen = model.ScreenTransition
	s.gate.Run("a", s.record("a"))

	s.scheduler.Advance(FadeTime + Leeway)
	s.Empty(s.ran)
	s.scheduler.Advance(FadeTime + Leeway)
	s.Empty(s.ran)

	s.state.Screen = model.ScreenLobby
	s.scheduler.Advance(FadeTime + Leeway)
	s.Equal([]string{"a"}, s.ran)
}

func (s *GateSuite) TestNewWorkQueuesBehindWaitingWork() {
	s.state.Screen = model.ScreenTransition
	s.gate.Run("a", s.record("a"))

	// Transition ends before the retry timer fires
	s.state.Screen = model.ScreenLobby
	s.gate.Run("b", s.record("b"))

	s.Equal([]string{"a", "b"}, s.ran)
	s.Equal(0, s.gate.Pending())
}

func (s *GateSuite) TestFlushPausesWhenCallbackStartsTransition() {
	s.state.Screen = model.ScreenTransition
	s.gate.Run("navigate", func() {
		s.ran = append(s.ran, "navigate")
		s.state.Screen = model.ScreenTransition
	})
	s.gate.Run("after", s.record("after"))

	s.state.Screen = model.ScreenLobby
	s.gate.Flush()
	s.Equal([]string{"navigate"}, s.ran)
	s.Equal(1, s.gate.Pending())

	s.state.Screen = model.ScreenRace
	s.scheduler.Advance(FadeTime + Leeway)
	s.Equal([]string{"navigate", "after"}, s.ran)
}

func (s *GateSuite) TestFlushWithoutPendingWorkIsNoop() {
	s.gate.Flush()
	s.Empty(s.ran)
	s.Equal(0, s.scheduler.Pending())
}
