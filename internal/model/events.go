package model

// Inbound event names
const (
	EventSettings             = "settings"
	EventError                = "error"
	EventWarning              = "warning"
	EventRoomList             = "roomList"
	EventRoomHistory          = "roomHistory"
	EventRoomJoined           = "roomJoined"
	EventRoomLeft             = "roomLeft"
	EventRoomUpdate           = "roomUpdate"
	EventRoomMessage          = "roomMessage"
	EventPrivateMessage       = "privateMessage"
	EventDiscordMessage       = "discordMessage"
	EventAdminMessage         = "adminMessage"
	EventRaceList             = "raceList"
	EventRacerList            = "racerList"
	EventRaceCreated          = "raceCreated"
	EventRaceJoined           = "raceJoined"
	EventRaceLeft             = "raceLeft"
	EventRaceSetStatus        = "raceSetStatus"
	EventRacerSetStatus       = "racerSetStatus"
	EventRaceStart            = "raceStart"
	EventRacerSetFloor        = "racerSetFloor"
	EventRacerSetPlaceMid     = "racerSetPlaceMid"
	EventRacerAddItem         = "racerAddItem"
	EventRacerSetStartingItem = "racerSetStartingItem"
	EventRacerCharacter       = "racerCharacter"
	EventAchievement          = "achievement"
)

// Connection lifecycle pseudo-events raised by the transport
const (
	EventOpen        = "open"
	EventClose       = "close"
	EventSocketError = "socketError"
)

// SettingsPayload is sent once after connecting
type SettingsPayload struct {
	UserID           int    `json:"userID"`
	Username         string `json:"username"`
	StreamURL        string `json:"streamURL"`
	TwitchBotEnabled bool   `json:"twitchBotEnabled"`
	TwitchBotDelay   int    `json:"twitchBotDelay"`
}

// MessagePayload carries a bare message (error, warning, adminMessage)
type MessagePayload struct {
	Message string `json:"message"`
}

// RoomListPayload is sent when entering a room
type RoomListPayload struct {
	Room  RoomID `json:"room"`
	Users []User `json:"users"`
}

// ChatMessage is one line of room history
type ChatMessage struct {
	Name     string `json:"name"`
	Message  string `json:"message"`
	Datetime int64  `json:"datetime"`
}

// RoomHistoryPayload carries the backlog of a room
type RoomHistoryPayload struct {
	Room    RoomID        `json:"room"`
	History []ChatMessage `json:"history"`
}

// RoomUserPayload is used by roomJoined and roomUpdate
type RoomUserPayload struct {
	Room RoomID `json:"room"`
	User User   `json:"user"`
}

// RoomLeftPayload is sent when someone leaves a room
type RoomLeftPayload struct {
	Room RoomID `json:"room"`
	Name string `json:"name"`
}

// RoomMessagePayload is a chat line in a room
type RoomMessagePayload struct {
	Room    RoomID `json:"room"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// DirectMessagePayload is used by privateMessage and discordMessage
type DirectMessagePayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RacerListPayload carries the full roster of a race
type RacerListPayload struct {
	ID     RaceID   `json:"id"`
	Racers []*Racer `json:"racers"`
}

// RaceMemberPayload is used by raceJoined and raceLeft
type RaceMemberPayload struct {
	ID   RaceID `json:"id"`
	Name string `json:"name"`
}

// RaceSetStatusPayload changes the lifecycle state of a race
type RaceSetStatusPayload struct {
	ID     RaceID `json:"id"`
	Status string `json:"status"`
}

// RacerSetStatusPayload changes a racer's status and place
type RacerSetStatusPayload struct {
	ID      RaceID      `json:"id"`
	Name    string      `json:"name"`
	Status  RacerStatus `json:"status"`
	Place   int         `json:"place"`
	RunTime int64       `json:"runTime"`
}

// RaceStartPayload schedules the start of a race
type RaceStartPayload struct {
	ID            RaceID  `json:"id"`
	SecondsToWait float64 `json:"secondsToWait"`
}

// RacerSetFloorPayload reports a racer arriving on a floor
type RacerSetFloorPayload struct {
	ID                       RaceID `json:"id"`
	Name                     string `json:"name"`
	FloorNum                 int    `json:"floorNum"`
	StageType                int    `json:"stageType"`
	DatetimeArrivedFloor     int64  `json:"datetimeArrivedFloor"`
	MillisecondsBehindLeader int64  `json:"millisecondsBehindLeader"`
}

// RacerSetPlaceMidPayload updates a racer's provisional place
type RacerSetPlaceMidPayload struct {
	ID       RaceID `json:"id"`
	Name     string `json:"name"`
	PlaceMid int    `json:"placeMid"`
}

// RacerItemPayload is used by racerAddItem and racerSetStartingItem
type RacerItemPayload struct {
	ID   RaceID   `json:"id"`
	Name string   `json:"name"`
	Item RaceItem `json:"item"`
}

// RacerCharacterPayload sets a racer's character
type RacerCharacterPayload struct {
	ID           RaceID `json:"id"`
	Name         string `json:"name"`
	CharacterNum int    `json:"characterNum"`
}
