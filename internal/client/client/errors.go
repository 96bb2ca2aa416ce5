package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrAlreadyKept  = errors.New("paper already saved on server")
	ErrNotFound     = errors.New("paper not found on server")
)
