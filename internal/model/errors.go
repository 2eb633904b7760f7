package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrMalformedRoomID = errors.New("malformed room id")

	// Race errors
	ErrRaceNotFound            = errors.New("race not found")
	ErrRacerNotFound           = errors.New("racer not found")
	ErrUnknownRaceStatus       = errors.New("unknown race status")
	ErrInvalidStatusTransition = errors.New("invalid race status transition")
	ErrRaceNotCurrent          = errors.New("race is not the current race")

	// Event errors
	ErrMalformedEvent = errors.New("malformed event")
	ErrServerError    = errors.New("server reported an error")

	// Storage errors
	ErrSessionNotFound = errors.New("session not found")
)

// ServerError is an error the server sent us. Its text is shown verbatim.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServerError
}

// IsFatal reports whether local state can no longer be trusted after err,
// meaning the connection has to be re-established.
func IsFatal(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrRaceNotFound) ||
		errors.Is(err, ErrUnknownRaceStatus) ||
		errors.Is(err, ErrServerError)
}
