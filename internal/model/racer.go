package model

// RacerStatus is a participant's state within a race
type RacerStatus string

const (
	RacerStatusNotReady     RacerStatus = "not ready"
	RacerStatusReady        RacerStatus = "ready"
	RacerStatusRacing       RacerStatus = "racing"
	RacerStatusFinished     RacerStatus = "finished"
	RacerStatusQuit         RacerStatus = "quit"
	RacerStatusDisqualified RacerStatus = "disqualified"
)

// RaceItem is an item picked up during a race
type RaceItem struct {
	ID       int `json:"id"`
	FloorNum int `json:"floorNum"`
}

// Racer is one participant's progress record
type Racer struct {
	Name                     string      `json:"name"`
	Status                   RacerStatus `json:"status"`
	Place                    int         `json:"place"`
	PlaceMid                 int         `json:"placeMid"`
	RunTime                  int64       `json:"runTime"`
	FloorNum                 int         `json:"floorNum"`
	StageType                int         `json:"stageType"`
	DatetimeArrivedFloor     int64       `json:"datetimeArrivedFloor"`
	MillisecondsBehindLeader int64       `json:"millisecondsBehindLeader"`
	Items                    []RaceItem  `json:"items"`
	StartingItem             int         `json:"startingItem"`
	CharacterNum             int         `json:"characterNum"`
}

// NewRacer returns the record used for someone who just joined
func NewRacer(name string) *Racer {
	return &Racer{
		Name:   name,
		Status: RacerStatusNotReady,
		Items:  []RaceItem{},
	}
}

// IsAltStage reports whether a stage type is one of the alternate floor variants
func IsAltStage(stageType int) bool {
	return stageType == 4 || stageType == 5
}

// IsFloorReset reports whether arriving on this floor means the run was restarted
func IsFloorReset(floorNum, stageType int) bool {
	return floorNum == 1 && !IsAltStage(stageType)
}

// Clone returns a deep copy of the racer
func (r *Racer) Clone() *Racer {
	c := *r
	c.Items = append([]RaceItem(nil), r.Items...)
	return &c
}
