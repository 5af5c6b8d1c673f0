// Package debugui renders Dear ImGui inspector windows for a running engine.
// It is driven as an ordinary engine.System and must run between the
// backend's BeginFrame and EndFrame calls.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/linker/engine"
)

// InputState tracks whether Dear ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// InspectorSystem draws the entity browser and performance windows each frame.
type InspectorSystem struct {
	Browser     *EntityBrowser
	Performance *PerformanceStats

	scheduler *engine.Scheduler
	input     InputState
}

// NewInspectorSystem creates an inspector for the engine e. Register the
// returned system on e.
func NewInspectorSystem(e *engine.Engine) *InspectorSystem {
	return &InspectorSystem{
		Browser:     NewEntityBrowser(100),
		Performance: NewPerformanceStats(120),
		scheduler:   e.Scheduler(),
	}
}

// Execute records the ImGui input state and renders both windows.
func (s *InspectorSystem) Execute(frame *engine.UpdateFrame) {
	io := imgui.CurrentIO()
	s.input.WantCaptureMouse = io.WantCaptureMouse()
	s.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	s.Browser.Render(frame.World)
	s.Performance.Render(frame.World, s.scheduler, float32(frame.DeltaTime))
}

// InputState returns the input capture state seen by the last Execute.
func (s *InspectorSystem) InputState() InputState {
	return s.input
}
