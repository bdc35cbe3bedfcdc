package analysis

import "errors"

var (
	// ErrInvalidAddress means the input is not a well-formed 0x-prefixed
	// 20-byte hex address. Fatal; returned to the caller immediately.
	ErrInvalidAddress = errors.New("invalid contract address")

	// ErrBytecodeFetch wraps bytecode-provider failures. Fatal; no partial
	// result is fabricated when the code cannot be retrieved.
	ErrBytecodeFetch = errors.New("bytecode fetch failed")

	// ErrReputationUnavailable marks a reputation provider that cannot serve
	// lookups at all. Never fatal; the reputation detector is skipped.
	ErrReputationUnavailable = errors.New("reputation provider unavailable")
)
