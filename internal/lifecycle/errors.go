package lifecycle

import "errors"

var (
	// ErrResolution means the widget path did not resolve to a usable factory.
	ErrResolution = errors.New("widget resolution failed")
	// ErrConstruction means the factory or the widget's own Init failed.
	ErrConstruction = errors.New("widget construction or init failed")
	// ErrConcurrentInitConflict means part of the subtree is already being initialized.
	ErrConcurrentInitConflict = errors.New("subtree is already being initialized")
	// ErrInvalidStateTransition means the requested transition is not allowed from the current state.
	ErrInvalidStateTransition = errors.New("invalid widget state transition")
	// ErrInterrupted means Destroy or SimulateFail replaced the record while its widget was being built.
	ErrInterrupted = errors.New("widget initialization interrupted")
)

// errorKind names the sentinel err wraps, for span attributes.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrConstruction):
		return "construction"
	case errors.Is(err, ErrConcurrentInitConflict):
		return "conflict"
	case errors.Is(err, ErrInterrupted):
		return "interrupted"
	default:
		return "unknown"
	}
}
