package command

import "errors"

// ErrEmptyInput is returned for blank input, which callers ignore
var ErrEmptyInput = errors.New("empty input")

// Usage hints shown to the user when input is rejected
const (
	HintPrivateMessage = "The format of a private message is: /pm Alice hello"
	HintNotOnline      = "That user is not currently online."
	HintNotice         = "The format of a notice is: /notice Hey guys!"
	HintBan            = "The format of a ban is: /ban Krakenos being too Polish"
	HintUnban          = "The format of an unban is: /unban Krakenos"
	HintNoPMs          = "No PMs have been received yet."
	HintReply          = "The format of a reply is: /r [message]"
	HintFloor          = "The format of a floor command is: /floor [stage] [stagetype]"
	HintNotInRace      = "You are not currently in a race."
	HintDevOnly        = "That command is only available in development mode."
	HintUnknown        = "That is not a valid command."
)

// ValidationError rejects input locally. Nothing is sent to the server.
type ValidationError struct {
	Hint string
}

func (e *ValidationError) Error() string {
	return e.Hint
}

func invalid(hint string) error {
	return &ValidationError{Hint: hint}
}

// IsValidationError reports whether err is a local validation failure
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
