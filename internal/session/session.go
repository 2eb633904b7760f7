//go:generate mockgen -package=mocks -destination=mocks/mock_sender.go github.com/mcoot/racesync/internal/session Sender

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/racesync/internal/dependencies/clock"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/chat"
	"github.com/mcoot/racesync/internal/services/command"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/services/modbridge"
	"github.com/mcoot/racesync/internal/services/race"
	"github.com/mcoot/racesync/internal/services/room"
	"github.com/mcoot/racesync/internal/services/router"
	"github.com/mcoot/racesync/internal/services/screen"
	"github.com/mcoot/racesync/internal/view"
)

const inboxSize = 256

// ErrStopped is returned by Do once the session loop has exited
var ErrStopped = errors.New("session stopped")

// Sender is the outbound half of the server connection
type Sender interface {
	Send(cmd model.Command) error
	Close() error
}

// Publisher receives a snapshot after every change. It must not block.
type Publisher interface {
	Publish(snap *model.SessionSnapshot)
}

// Options configures a Session
type Options struct {
	ID        model.SessionID // generated when empty
	DevMode   bool
	Sender    Sender
	Renderer  view.Renderer
	Mod       modbridge.Channel
	Publisher Publisher       // optional
	Clock     clock.Clock     // defaults to the system clock
	Scheduler clock.Scheduler // nil means timers post onto the session queue
	OnRestart func()          // optional
	Logger    *slog.Logger
}

// Session owns all client state for one server connection. Inbound events,
// user input and timer callbacks run one at a time on its goroutine.
type Session struct {
	id        model.SessionID
	state     *model.SessionState
	rooms     *room.Store
	races     *race.Store
	parser    *command.Parser
	router    *router.Router
	nav       *screen.Navigator
	chat      *chat.Drawer
	gate      *gate.Gate
	renderer  view.Renderer
	sender    Sender
	publisher Publisher
	clock     clock.Clock
	onRestart func()
	logger    *slog.Logger

	inbox chan func()
	done  chan struct{}
	ctx   context.Context
}

// New wires the stores and handlers for a session
func New(opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = model.SessionID(uuid.NewString())
	}
	logger := opts.Logger.With(slog.String("session", string(id)))

	s := &Session{
		id:        id,
		state:     model.NewSessionState(opts.DevMode),
		renderer:  opts.Renderer,
		sender:    opts.Sender,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		onRestart: opts.OnRestart,
		logger:    logger.With(slog.String("component", "session")),
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
		ctx:       context.Background(),
	}
	if s.renderer == nil {
		s.renderer = view.Nop{}
	}
	if s.clock == nil {
		s.clock = clock.New()
	}

	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = clock.NewTimerScheduler(s.Post)
	}

	s.gate = gate.New(s.state, scheduler, logger)
	s.rooms = room.New(logger)
	s.races = race.New(s.state, modbridge.New(opts.Mod, logger), s.clock, scheduler, s.gate, s.renderer, logger)
	s.nav = screen.New(s.state, scheduler, s.gate, s.renderer, logger)
	s.chat = chat.New(s.state, s.rooms, s.gate, s.renderer, logger)
	s.parser = command.NewParser(s.state, s.rooms, logger)

	s.router = router.New(logger)
	router.NewHandlers(router.Dependencies{
		State:    s.state,
		Rooms:    s.rooms,
		Races:    s.races,
		Chat:     s.chat,
		Nav:      s.nav,
		Gate:     s.gate,
		Renderer: s.renderer,
		Sender:   s.sender,
		Logger:   logger,
	}).Register(s.router)

	return s
}

// ID returns the session identifier
func (s *Session) ID() model.SessionID {
	return s.id
}

// Run executes queued work until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	defer close(s.done)

	s.logger.Info("session started")
	for {
		select {
		case fn := <-s.inbox:
			fn()
			s.publish()
		case <-ctx.Done():
			s.logger.Info("session stopped")
			return nil
		}
	}
}

// Post queues fn to run on the session goroutine. It blocks while the queue
// is full and drops fn once the session has stopped.
func (s *Session) Post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
		s.logger.Debug("work posted after stop dropped")
	}
}

// Do runs fn on the session goroutine and waits for it to finish
func (s *Session) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	work := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.inbox <- work:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleEvent queues an inbound server event. It is the transport sink.
func (s *Session) HandleEvent(name string, payload json.RawMessage) {
	s.Post(func() { _ = s.Dispatch(name, payload) })
}

// SubmitInput queues a line typed by the user
func (s *Session) SubmitInput(text string) {
	s.Post(func() { _ = s.Input(text) })
}

// ModConnected queues a full resend of the mod values
func (s *Session) ModConnected() {
	s.Post(s.races.ResendModValues)
}

// ModLine queues a line received from the mod
func (s *Session) ModLine(line string) {
	s.Post(func() { s.modLine(line) })
}

// Dispatch applies an inbound event on the calling goroutine. Only use it
// from the session goroutine or when the loop is not running.
func (s *Session) Dispatch(name string, payload json.RawMessage) error {
	err := s.router.Dispatch(s.ctx, name, payload)
	s.handleError(err)
	return err
}

// Input parses and sends a line of user input on the calling goroutine
func (s *Session) Input(text string) error {
	cmd, err := s.parser.Parse(text, s.state.CurrentRoom())
	if err != nil {
		s.handleError(err)
		return err
	}

	if model.IsLocal(cmd) {
		s.logger.Info("restart requested")
		if s.onRestart != nil {
			s.onRestart()
		}
		return nil
	}

	if err := s.send(cmd); err != nil {
		return err
	}
	if pm, ok := cmd.(model.PrivateMessageCommand); ok {
		// The server does not echo private messages back
		s.chat.PrivateMessage(view.PMTo, pm.Name, pm.Message)
	}
	return nil
}

// Recall steps through the input history of the room on screen
func (s *Session) Recall(older bool) (string, bool) {
	id := s.state.CurrentRoom()
	if older {
		return s.rooms.RecallOlder(id)
	}
	return s.rooms.RecallNewer(id)
}

func (s *Session) send(cmd model.Command) error {
	if err := s.sender.Send(cmd); err != nil {
		s.handleError(err)
		return err
	}
	return nil
}

func (s *Session) modLine(line string) {
	verb, rest := modbridge.ParseLine(line)
	if verb == modbridge.VerbPing {
		return
	}
	s.logger.Debug("unhandled mod line", slog.String("verb", verb), slog.String("rest", rest))
}

func (s *Session) handleError(err error) {
	if err == nil || errors.Is(err, command.ErrEmptyInput) {
		return
	}

	var validation *command.ValidationError
	if errors.As(err, &validation) {
		s.renderer.Warning(validation.Hint)
		return
	}

	if model.IsFatal(err) {
		message := err.Error()
		var serverErr *model.ServerError
		if errors.As(err, &serverErr) {
			message = serverErr.Message
		}
		s.logger.Error("unrecoverable error", slog.Any("error", err))
		s.nav.ShowError(message)
		if closeErr := s.sender.Close(); closeErr != nil {
			s.logger.Warn("closing connection failed", slog.Any("error", closeErr))
		}
		return
	}

	s.logger.Warn("event failed", slog.Any("error", err))
	s.renderer.Warning(err.Error())
}
