package engine

type UpdateFrame struct {
	DeltaTime float64
	Frame     uint64
	World     *World
}

func newUpdateFrame(dt float64, frame uint64, world *World) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Frame:     frame,
		World:     world,
	}
}
