package transport

import "errors"

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrBind           = errors.New("could not bind")
)
