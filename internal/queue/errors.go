package queue

import "errors"

var (
	// ErrMalformedFilename marks a file in the queue directory whose name
	// does not parse into the timestamp, priority and id fields.
	ErrMalformedFilename = errors.New("malformed task filename")

	// ErrPriorityOutOfRange is returned by Enqueue for priorities that do
	// not fit the fixed-width filename encoding.
	ErrPriorityOutOfRange = errors.New("priority out of range")
)
