package appearance

import "errors"

// Registry errors.
var (
	// ErrBridgeUnavailable means the native bridge could not be initialized.
	ErrBridgeUnavailable = errors.New("native bridge unavailable")

	// ErrAppearanceUnavailable means the bridge has no data for the requested appearance.
	ErrAppearanceUnavailable = errors.New("appearance unavailable")

	// ErrParse means appearance text did not conform to the wire format.
	ErrParse = errors.New("unable to parse appearance data")

	// ErrRegistryRunning is returned by Start on a registry that is already running.
	ErrRegistryRunning = errors.New("registry already running")
)
