package ws

import "errors"

var (
	errSeatRange      = errors.New("seat index out of range")
	errNoSeat         = errors.New("join a seat first")
	errUnknownCommand = errors.New("unknown command type")
)
