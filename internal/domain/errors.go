package domain

import "errors"

var (
	// ErrInvalidConfig indicates a mapping or startup parameter is out of range
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrShortRead indicates a serial read returned fewer than 2 bytes
	ErrShortRead = errors.New("short read")

	// ErrDeviceLost indicates the sensor handle is unusable and must be replaced
	ErrDeviceLost = errors.New("sensor device lost")

	// ErrReadTimeout indicates the sensor produced nothing within its timeout
	ErrReadTimeout = errors.New("sensor read timed out")

	// ErrProbeExhausted indicates no reconnect candidate could be opened
	ErrProbeExhausted = errors.New("no sensor device found")

	// ErrSampleNotFound indicates no status sample has been journaled yet
	ErrSampleNotFound = errors.New("sample not found")
)
