package race

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mcoot/racesync/internal/dependencies/clock"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/services/modbridge"
	"github.com/mcoot/racesync/internal/view"
)

const (
	// SoloCountdownFrom is the first tick of a solo race countdown
	SoloCountdownFrom = 3
	// CountdownFrom is the first tick of a multiplayer race countdown
	CountdownFrom = 5
	// TickInterval separates countdown ticks
	TickInterval = time.Second
)

type announcement struct {
	race     model.RaceID
	name     string
	floorNum int
}

// Store is the client's mirror of every race the server has told us about.
// It is owned by the session goroutine and is not safe for concurrent use.
type Store struct {
	races      map[model.RaceID]*model.Race
	state      *model.SessionState
	bridge     *modbridge.Bridge
	clock      clock.Clock
	scheduler  clock.Scheduler
	gate       *gate.Gate
	renderer   view.Renderer
	logger     *slog.Logger
	countdowns map[model.RaceID]bool
	announced  map[announcement]bool
}

// New creates an empty Store
func New(
	state *model.SessionState,
	bridge *modbridge.Bridge,
	clk clock.Clock,
	scheduler clock.Scheduler,
	g *gate.Gate,
	renderer view.Renderer,
	logger *slog.Logger,
) *Store {
	return &Store{
		races:      make(map[model.RaceID]*model.Race),
		state:      state,
		bridge:     bridge,
		clock:      clk,
		scheduler:  scheduler,
		gate:       g,
		renderer:   renderer,
		logger:     logger.With(slog.String("component", "races")),
		countdowns: make(map[model.RaceID]bool),
		announced:  make(map[announcement]bool),
	}
}

// Get returns a race by ID
func (s *Store) Get(id model.RaceID) (*model.Race, bool) {
	race, ok := s.races[id]
	return race, ok
}

// All returns every known race ordered by ID
func (s *Store) All() []*model.Race {
	races := make([]*model.Race, 0, len(s.races))
	for _, race := range s.races {
		races = append(races, race)
	}
	sort.Slice(races, func(i, j int) bool { return races[i].ID < races[j].ID })
	return races
}

// Current returns the race the user is in, if it still exists
func (s *Store) Current() (*model.Race, bool) {
	if !s.state.InRace() {
		return nil, false
	}
	return s.Get(s.state.CurrentRaceID)
}

// MyRacer returns the local user's record in the current race
func (s *Store) MyRacer() *model.Racer {
	race, ok := s.Current()
	if !ok {
		return nil
	}
	return race.FindRacer(s.state.Username)
}

// Reset forgets every race, for a new connection
func (s *Store) Reset() {
	s.races = make(map[model.RaceID]*model.Race)
	s.countdowns = make(map[model.RaceID]bool)
	s.announced = make(map[announcement]bool)
}

// SetRaceList replaces the known races with the list sent on connect. If the
// user is signed up for one of them it becomes the current race and its ID is
// returned.
func (s *Store) SetRaceList(races []*model.Race) (model.RaceID, bool) {
	s.races = make(map[model.RaceID]*model.Race, len(races))

	mine := model.NoRace
	for _, race := range races {
		race.RacerList = []*model.Racer{}
		s.races[race.ID] = race
		if race.HasRacer(s.state.Username) {
			mine = race.ID
		}
	}

	s.logger.Debug("race list received", slog.Int("races", len(races)))

	if mine == model.NoRace {
		return model.NoRace, false
	}
	s.state.CurrentRaceID = mine
	return mine, true
}

// Create stores a newly created race
func (s *Store) Create(race *model.Race) {
	if race.RacerList == nil {
		race.RacerList = []*model.Racer{}
	}
	if race.Status == "" {
		race.Status = model.RaceStatusOpen
	}
	s.races[race.ID] = race
	s.logger.Debug("race created",
		slog.Int("race", int(race.ID)),
		slog.String("captain", race.Captain))
}

// SetRacerList replaces the detailed roster of a race. This is sent when we
// create a race or reconnect in the middle of one.
func (s *Store) SetRacerList(id model.RaceID, racers []*model.Racer) (*model.Race, error) {
	race, ok := s.races[id]
	if !ok {
		return nil, fmt.Errorf("racer list: %w: %d", model.ErrRaceNotFound, id)
	}

	race.RacerList = make([]*model.Racer, 0, len(racers))
	seen := make(map[string]bool, len(racers))
	for _, racer := range racers {
		if racer == nil || seen[racer.Name] {
			continue
		}
		seen[racer.Name] = true
		if racer.Items == nil {
			racer.Items = []model.RaceItem{}
		}
		race.RacerList = append(race.RacerList, racer)
	}

	if race.Status == model.RaceStatusInProgress {
		s.logger.Info("rejoining race in progress", slog.Int("race", int(id)))
		s.bridge.SetStatus(race.Status)
	}
	s.bridge.SendExtraValues(race, s.state.Username)
	return race, nil
}

// JoinResult describes the effect of someone joining a race
type JoinResult struct {
	Race    *model.Race
	Racer   *model.Racer // set when added to the current race's roster
	Self    bool
	Current bool
}

// Join signs name up for a race. An unknown race is ignored.
func (s *Store) Join(id model.RaceID, name string) *JoinResult {
	race, ok := s.races[id]
	if !ok {
		s.logger.Debug("join for unknown race", slog.Int("race", int(id)))
		return nil
	}

	if !race.HasRacer(name) {
		race.Racers = append(race.Racers, name)
	}

	result := &JoinResult{Race: race, Self: s.state.IsMe(name)}
	if result.Self {
		s.state.CurrentRaceID = id
	}
	if id != s.state.CurrentRaceID {
		return result
	}

	result.Current = true
	// Joining makes the race current, so racers signed up earlier get
	// placeholder entries until racerList arrives
	for _, n := range race.Racers {
		if race.FindRacer(n) != nil {
			continue
		}
		racer := model.NewRacer(n)
		race.RacerList = append(race.RacerList, racer)
		if n == name {
			result.Racer = racer
		}
	}
	if !result.Self {
		s.sendCounts(race)
	}
	return result
}

// LeaveResult describes the effect of someone leaving a race
type LeaveResult struct {
	Race           *model.Race
	Self           bool
	Current        bool
	Deleted        bool
	CaptainChanged bool
}

// Leave removes name from a race. The captaincy passes to the longest
// standing racer and an empty race is deleted.
func (s *Store) Leave(id model.RaceID, name string) (*LeaveResult, error) {
	race, ok := s.races[id]
	if !ok {
		return nil, fmt.Errorf("leave: %w: %d", model.ErrRaceNotFound, id)
	}

	idx := -1
	for i, n := range race.Racers {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%q left race %d: %w", name, id, model.ErrRacerNotFound)
	}

	race.Racers = append(race.Racers[:idx], race.Racers[idx+1:]...)
	for i, racer := range race.RacerList {
		if racer.Name == name {
			race.RacerList = append(race.RacerList[:i], race.RacerList[i+1:]...)
			break
		}
	}

	result := &LeaveResult{
		Race:    race,
		Self:    s.state.IsMe(name),
		Current: id == s.state.CurrentRaceID,
	}

	if len(race.Racers) == 0 {
		s.remove(id)
		result.Deleted = true
	} else if race.Captain == name {
		race.Captain = race.Racers[0]
		result.CaptainChanged = true
	}

	if result.Self {
		s.state.CurrentRaceID = model.NoRace
		return result, nil
	}
	if result.Current && !result.Deleted {
		s.sendCounts(race)
	}
	return result, nil
}

// StatusChange describes an applied race status update
type StatusChange struct {
	Race     *model.Race
	Previous model.RaceStatus
	Current  bool
	Removed  bool
}

// SetStatus moves a race along its lifecycle. Re-applying the current status
// changes nothing and returns nil. A finished race is removed.
func (s *Store) SetStatus(id model.RaceID, raw string) (*StatusChange, error) {
	status, err := model.ParseRaceStatus(raw)
	if err != nil {
		return nil, fmt.Errorf("race %d: %w", id, err)
	}

	race, ok := s.races[id]
	if !ok {
		return nil, nil
	}
	if race.Status == status {
		return nil, nil
	}
	if status.Rank() < race.Status.Rank() {
		return nil, fmt.Errorf("race %d from %q to %q: %w",
			id, race.Status, status, model.ErrInvalidStatusTransition)
	}

	change := &StatusChange{
		Race:     race,
		Previous: race.Status,
		Current:  id == s.state.CurrentRaceID,
	}
	race.Status = status

	// The mod is switched to "in progress" by the countdown itself
	if change.Current && (status == model.RaceStatusOpen || status == model.RaceStatusStarting) {
		s.bridge.SetStatus(status)
	}

	switch status {
	case model.RaceStatusInProgress:
		if race.DatetimeStarted == 0 {
			race.DatetimeStarted = clock.UnixMilli(s.clock)
		}
	case model.RaceStatusFinished:
		s.remove(id)
		change.Removed = true
	}
	return change, nil
}

// Start schedules the countdown of the current race. Later starts for a race
// that already has a countdown are ignored.
func (s *Store) Start(id model.RaceID, secondsToWait float64) error {
	if id != s.state.CurrentRaceID {
		return fmt.Errorf("start of race %d: %w", id, model.ErrRaceNotCurrent)
	}
	race, ok := s.races[id]
	if !ok {
		return nil
	}
	if s.countdowns[id] {
		s.logger.Debug("countdown already armed", slog.Int("race", int(id)))
		return nil
	}
	s.countdowns[id] = true

	wait := time.Duration(secondsToWait * float64(time.Second))
	race.DatetimeStarted = s.clock.Now().Add(wait).UnixMilli()

	if race.Ruleset.Solo {
		s.scheduler.AfterFunc(0, func() { s.tick(id, SoloCountdownFrom) })
		return nil
	}
	first := wait - time.Duration(CountdownFrom)*TickInterval - gate.FadeTime
	s.scheduler.AfterFunc(first, func() { s.tick(id, CountdownFrom) })
	return nil
}

func (s *Store) tick(id model.RaceID, n int) {
	if _, ok := s.races[id]; !ok || id != s.state.CurrentRaceID {
		s.logger.Debug("countdown discarded", slog.Int("race", int(id)), slog.Int("tick", n))
		return
	}

	s.gate.Run("countdown", func() {
		s.renderer.Countdown(id, n)
	})

	if n == 0 {
		s.bridge.SetStatus(model.RaceStatusInProgress)
		return
	}
	s.scheduler.AfterFunc(TickInterval, func() { s.tick(id, n-1) })
}

// racer resolves a racer in the current race. Updates for any other race, a
// missing race or an unknown racer resolve to nil.
func (s *Store) racer(id model.RaceID, name string) (*model.Race, *model.Racer) {
	if id != s.state.CurrentRaceID {
		return nil, nil
	}
	race, ok := s.races[id]
	if !ok {
		return nil, nil
	}
	return race, race.FindRacer(name)
}

// SetRacerStatus records a racer's status, final place and run time
func (s *Store) SetRacerStatus(p model.RacerSetStatusPayload) *model.Racer {
	race, racer := s.racer(p.ID, p.Name)
	if race == nil {
		return nil
	}
	if racer != nil {
		racer.Status = p.Status
		racer.Place = p.Place
		racer.RunTime = p.RunTime
	}

	if s.state.IsMe(p.Name) {
		s.bridge.SetMyStatus(p.Status)
		s.bridge.SetPlace(p.Place)
	}
	if race.Status == model.RaceStatusOpen {
		s.bridge.SetNumReady(race.NumReady())
	}
	return racer
}

// SetFloor records a racer arriving on a floor. Going back to the first
// floor means the run was reset, which clears the racer's items.
func (s *Store) SetFloor(p model.RacerSetFloorPayload) *model.Racer {
	race, racer := s.racer(p.ID, p.Name)
	if racer == nil {
		return nil
	}

	me := race.FindRacer(s.state.Username)
	weAreFirst := me != nil && me.PlaceMid == 1 && me.FloorNum > 1

	racer.FloorNum = p.FloorNum
	racer.StageType = p.StageType
	racer.DatetimeArrivedFloor = p.DatetimeArrivedFloor
	racer.MillisecondsBehindLeader = p.MillisecondsBehindLeader

	if model.IsFloorReset(p.FloorNum, p.StageType) {
		racer.Items = []model.RaceItem{}
		racer.StartingItem = 0
		s.forgetAnnouncements(p.ID, p.Name)
	}

	if s.state.IsMe(p.Name) {
		s.bridge.SetMillisecondsBehindLeader(racer.MillisecondsBehindLeader)
	}

	if weAreFirst && racer.PlaceMid == 2 && racer.FloorNum == me.FloorNum {
		key := announcement{race: p.ID, name: racer.Name, floorNum: racer.FloorNum}
		if !s.announced[key] {
			s.announced[key] = true
			s.bridge.SetMessage(modbridge.LeaderMessage(racer.Name, racer.MillisecondsBehindLeader))
		}
	}
	return racer
}

func (s *Store) forgetAnnouncements(id model.RaceID, name string) {
	for key := range s.announced {
		if key.race == id && key.name == name {
			delete(s.announced, key)
		}
	}
}

// SetPlaceMid records a racer's provisional place
func (s *Store) SetPlaceMid(p model.RacerSetPlaceMidPayload) *model.Racer {
	race, racer := s.racer(p.ID, p.Name)
	if race == nil {
		return nil
	}
	if racer != nil {
		racer.PlaceMid = p.PlaceMid
	}
	if s.state.IsMe(p.Name) {
		s.bridge.SetPlaceMid(p.PlaceMid)
	}
	return racer
}

// AddItem appends an item to a racer's build
func (s *Store) AddItem(p model.RacerItemPayload) *model.Racer {
	_, racer := s.racer(p.ID, p.Name)
	if racer == nil {
		return nil
	}
	racer.Items = append(racer.Items, p.Item)
	return racer
}

// SetStartingItem records the item a racer started with
func (s *Store) SetStartingItem(p model.RacerItemPayload) *model.Racer {
	_, racer := s.racer(p.ID, p.Name)
	if racer == nil {
		return nil
	}
	racer.StartingItem = p.Item.ID
	return racer
}

// SetCharacter records a racer's character
func (s *Store) SetCharacter(p model.RacerCharacterPayload) *model.Racer {
	_, racer := s.racer(p.ID, p.Name)
	if racer == nil {
		return nil
	}
	racer.CharacterNum = p.CharacterNum
	return racer
}

// ResendModValues brings a newly connected mod up to date
func (s *Store) ResendModValues() {
	race, ok := s.Current()
	if !ok {
		return
	}
	s.bridge.SendRaceValues(race, s.state.Username)
}

func (s *Store) sendCounts(race *model.Race) {
	s.bridge.SetNumReady(race.NumReady())
	s.bridge.SetNumEntrants(len(race.RacerList))
}

func (s *Store) remove(id model.RaceID) {
	delete(s.races, id)
	delete(s.countdowns, id)
	s.forgetRace(id)
	s.logger.Debug("race removed", slog.Int("race", int(id)))
}

func (s *Store) forgetRace(id model.RaceID) {
	for key := range s.announced {
		if key.race == id {
			delete(s.announced, key)
		}
	}
}
