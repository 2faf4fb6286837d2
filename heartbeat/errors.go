package heartbeat

import "errors"

var (
	// ErrOverrideMissing indicates the configured override path does not exist.
	ErrOverrideMissing = errors.New("heartbeat: override file not found")

	// ErrNoCandidates indicates no heartbeat file was found in any search directory.
	ErrNoCandidates = errors.New("heartbeat: no heartbeat file found")

	// ErrUnreadable indicates the selected heartbeat file could not be read.
	ErrUnreadable = errors.New("heartbeat: file unreadable")
)
