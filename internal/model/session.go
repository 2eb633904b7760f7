package model

// Screen identifies what the UI is currently showing
type Screen string

const (
	ScreenTitle        Screen = "title"
	ScreenTitleAjax    Screen = "title-ajax"
	ScreenRegister     Screen = "register"
	ScreenRegisterAjax Screen = "register-ajax"
	ScreenLobby        Screen = "lobby"
	ScreenRace         Screen = "race"
	ScreenTransition   Screen = "transition"
	ScreenError        Screen = "error"
)

// SessionState is the per-connection context shared by every component.
// It is only ever touched from the session goroutine.
type SessionState struct {
	Screen        Screen
	CurrentRaceID RaceID
	Username      string
	UserID        int
	LastPM        string // empty until a private message arrives
	DevMode       bool
}

// NewSessionState returns the state of a freshly connected client
func NewSessionState(devMode bool) *SessionState {
	return &SessionState{
		Screen:        ScreenTitleAjax,
		CurrentRaceID: NoRace,
		DevMode:       devMode,
	}
}

// InRace reports whether the user is bound to a race
func (s *SessionState) InRace() bool {
	return s.CurrentRaceID != NoRace
}

// IsMe reports whether name is the local user
func (s *SessionState) IsMe(name string) bool {
	return s.Username != "" && name == s.Username
}

// InTransition reports whether a screen change is in flight
func (s *SessionState) InTransition() bool {
	return s.Screen == ScreenTransition
}

// CurrentRoom returns the chat room matching the current screen
func (s *SessionState) CurrentRoom() RoomID {
	if s.Screen == ScreenRace && s.InRace() {
		return RaceRoom(s.CurrentRaceID)
	}
	return LobbyRoom()
}
