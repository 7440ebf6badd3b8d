// Package backend defines the presenter surface a frontend renders
// VRAM snapshots and collects pad input through, independent of
// whether the concrete frontend is a headless batch runner or some
// future windowed one; only the headless implementation ships here.
package backend

import "github.com/gopsx/pstation/debug"

// InputEvent is a single pad button transition a presenter observed.
type InputEvent struct {
	Button  uint
	Pressed bool
}

// Presenter represents a complete frontend: rendering plus input
// collection plus any presenter-specific extras (snapshots, debug
// overlays).
type Presenter interface {
	// Init configures the presenter. Required before calling Update.
	Init(config PresenterConfig) error

	// Update renders frame and returns any pad input collected since
	// the previous call.
	Update(frame *debug.VRAMData) ([]InputEvent, error)

	// Cleanup releases presenter resources on shutdown.
	Cleanup() error
}

// DebugDataProvider is the minimal interface a presenter needs to pull
// debug information, avoiding a dependency on the whole machine.
type DebugDataProvider interface {
	ExtractDebugData() *debug.CompleteDebugData
}

// PresenterConfig configures a Presenter at Init time.
type PresenterConfig struct {
	Title         string
	Scale         int
	VSync         bool
	Fullscreen    bool
	ShowDebug     bool
	DebugProvider DebugDataProvider
	Callbacks     PresenterCallbacks
}

// PresenterCallbacks lets a presenter notify its caller of lifecycle
// events it cannot express through Update's return value alone.
type PresenterCallbacks struct {
	OnQuit func()
}
