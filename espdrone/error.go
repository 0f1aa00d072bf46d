package espdrone

import (
	"errors"
	"fmt"
	"syscall"
)

type droneError uint8

func (e droneError) Error() string {
	return fmt.Sprintf("espdrone: %s", droneErrorString[e])
}

const (
	ErrorBindConflict droneError = iota
	ErrorPermissionDenied
	ErrorNetworkUnreachable
	ErrorOpenFailed

	ErrorLinkAlreadyOpen
	ErrorAlreadyConnected
	ErrorNotConnected
	ErrorInvalidState
)

var droneErrorString = map[droneError]string{
	ErrorBindConflict:       "local command port is already in use, is another ground station running?",
	ErrorPermissionDenied:   "permission denied opening the command port",
	ErrorNetworkUnreachable: "vehicle network is unreachable, check the Wi-Fi connection",
	ErrorOpenFailed:         "could not open the command link",

	ErrorLinkAlreadyOpen:  "link is already open",
	ErrorAlreadyConnected: "already connected or connecting",
	ErrorNotConnected:     "not connected to a vehicle",
	ErrorInvalidState:     "command not valid in the current flight state",
}

// classifyOpenError maps a transport bind/dial failure onto one of the
// user-actionable open error kinds.
func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return ErrorBindConflict
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return ErrorPermissionDenied
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return ErrorNetworkUnreachable
	default:
		return ErrorOpenFailed
	}
}
