package health

import "errors"

var (
	// ErrCheckFailed indicates a health check failed.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrDuplicateStage indicates a stage name was registered twice.
	ErrDuplicateStage = errors.New("health: duplicate stage")

	// ErrMissingArtifact indicates a required data file is absent or unreadable.
	ErrMissingArtifact = errors.New("health: required file missing")

	// ErrProcessNotFound indicates no process carries the expected marker.
	ErrProcessNotFound = errors.New("health: process not found")

	// ErrStaleHeartbeat indicates the heartbeat record failed a staleness condition.
	ErrStaleHeartbeat = errors.New("health: heartbeat unhealthy")

	// ErrLinkUnreachable indicates the radio link handshake failed.
	ErrLinkUnreachable = errors.New("health: radio link unreachable")
)
