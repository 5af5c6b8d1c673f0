package ebiten_test

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/linker/engine"
	"github.com/plus3/linker/engine/debugui"
	debugui_ebiten "github.com/plus3/linker/engine/debugui/ebiten"
)

func Example() {
	backend := debugui_ebiten.NewImguiBackend("Entity Inspector", 1280, 720)

	e := engine.Create()
	for i := 0; i < 500; i++ {
		e.Spawn()
	}

	// The inspector renders inside the frame opened by Game.Update.
	e.Register(debugui.NewInspectorSystem(e))

	game := &debugui_ebiten.Game{
		Engine:  e,
		Backend: backend,
	}

	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
