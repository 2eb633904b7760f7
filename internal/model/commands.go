package model

// Command is an outbound action produced from user input
type Command interface {
	CommandName() string
}

// CheckpointItemID is the item sent by /checkpoint
const CheckpointItemID = 560

// RoomJoinCommand asks the server to put us in a room
type RoomJoinCommand struct {
	Room RoomID `json:"room"`
}

func (RoomJoinCommand) CommandName() string { return "roomJoin" }

// RoomMessageCommand sends a chat line to a room
type RoomMessageCommand struct {
	Room    RoomID `json:"room"`
	Message string `json:"message"`
}

func (RoomMessageCommand) CommandName() string { return "roomMessage" }

// PrivateMessageCommand sends a message to a single user
type PrivateMessageCommand struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (PrivateMessageCommand) CommandName() string { return "privateMessage" }

// RaceFinishCommand force-finishes the current race (development only)
type RaceFinishCommand struct {
	ID RaceID `json:"id"`
}

func (RaceFinishCommand) CommandName() string { return "raceFinish" }

// RaceReadyCommand readies up in the current race (development only)
type RaceReadyCommand struct {
	ID RaceID `json:"id"`
}

func (RaceReadyCommand) CommandName() string { return "raceReady" }

// RaceFloorCommand reports an arbitrary floor for the current race
type RaceFloorCommand struct {
	ID        RaceID `json:"id"`
	FloorNum  int    `json:"floorNum"`
	StageType int    `json:"stageType"`
}

func (RaceFloorCommand) CommandName() string { return "raceFloor" }

// RaceItemCommand reports an item pickup for the current race
type RaceItemCommand struct {
	ID     RaceID `json:"id"`
	ItemID int    `json:"itemID"`
}

func (RaceItemCommand) CommandName() string { return "raceItem" }

// AdminShutdownCommand shuts the server down. Comment "restart" brings it back up.
type AdminShutdownCommand struct {
	Comment string `json:"comment,omitempty"`
}

func (AdminShutdownCommand) CommandName() string { return "adminShutdown" }

// AdminUnshutdownCommand cancels a pending shutdown
type AdminUnshutdownCommand struct{}

func (AdminUnshutdownCommand) CommandName() string { return "adminUnshutdown" }

// AdminMessageCommand broadcasts a notice
type AdminMessageCommand struct {
	Message string `json:"message"`
}

func (AdminMessageCommand) CommandName() string { return "adminMessage" }

// AdminBanCommand bans a user
type AdminBanCommand struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

func (AdminBanCommand) CommandName() string { return "adminBan" }

// AdminUnbanCommand lifts a ban
type AdminUnbanCommand struct {
	Name string `json:"name"`
}

func (AdminUnbanCommand) CommandName() string { return "adminUnban" }

// DebugCommand triggers the server's debug hook
type DebugCommand struct{}

func (DebugCommand) CommandName() string { return "debug" }

// RestartCommand restarts the client. It is handled locally and never sent.
type RestartCommand struct{}

func (RestartCommand) CommandName() string { return "restart" }

// IsLocal reports whether a command is handled without the server
func IsLocal(cmd Command) bool {
	_, ok := cmd.(RestartCommand)
	return ok
}
