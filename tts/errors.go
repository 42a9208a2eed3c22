package tts

import "errors"

// Common errors for the narration engine.
var (
	// Engine lifecycle errors
	ErrNotInitialized     = errors.New("engine is not initialized")
	ErrEngineNotAvailable = errors.New("synthesis engine is not available")
	ErrInvalidStatus      = errors.New("operation not valid in current status")

	// Playback errors
	ErrDeviceFailure   = errors.New("audio device failure")
	ErrNoActiveSession = errors.New("no active playback session")

	// Configuration errors
	ErrRateOutOfRange = errors.New("rate must be between 0.5 and 2.0")
	ErrInvalidConfig  = errors.New("invalid configuration")
)
