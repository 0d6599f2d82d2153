package xttl

import "errors"

var (
	// ErrInvalidLifetime 表示 lifetime 为负值。
	ErrInvalidLifetime = errors.New("xttl: lifetime must not be negative")
)
