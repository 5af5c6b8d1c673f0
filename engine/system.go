package engine

// System represents per-frame behavior run by Engine.Update. Systems read the
// world through the UpdateFrame and may keep their own state between frames,
// but they never add entities or change ids.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
