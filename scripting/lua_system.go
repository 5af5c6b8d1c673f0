// Package scripting runs per-frame systems written in Lua.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plus3/linker/engine"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// UpdateFunc is the global a script must define. It is called once per frame
// as update(dt, count).
const UpdateFunc = "update"

// LuaSystem is an engine.System backed by a single gopher-lua VM.
// Single-goroutine access only, like the engine it runs in.
type LuaSystem struct {
	name   string
	vm     *lua.LState
	log    *zap.Logger
	world  *engine.World
	errors int
	calls  int
}

// NewLuaSystem loads the script at path. The script must define a global
// update function.
func NewLuaSystem(path string, log *zap.Logger) (*LuaSystem, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	return newLuaSystem(filepath.Base(path), log, func(vm *lua.LState) error {
		return vm.DoFile(path)
	})
}

// NewLuaSystemString loads a script from source. name identifies it in logs.
func NewLuaSystemString(name, source string, log *zap.Logger) (*LuaSystem, error) {
	return newLuaSystem(name, log, func(vm *lua.LState) error {
		return vm.DoString(source)
	})
}

func newLuaSystem(name string, log *zap.Logger, load func(*lua.LState) error) (*LuaSystem, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &LuaSystem{
		name: name,
		vm:   lua.NewState(),
		log:  log,
	}
	s.vm.SetGlobal("API_VERSION", lua.LNumber(1))
	s.vm.SetGlobal("entity_count", s.vm.NewFunction(s.luaEntityCount))
	s.vm.SetGlobal("capacity", s.vm.NewFunction(s.luaCapacity))

	if err := load(s.vm); err != nil {
		s.vm.Close()
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	if fn := s.vm.GetGlobal(UpdateFunc); fn.Type() != lua.LTFunction {
		s.vm.Close()
		return nil, fmt.Errorf("load script %s: global %q is %s, not a function", name, UpdateFunc, fn.Type())
	}

	log.Debug("loaded lua system", zap.String("script", name))
	return s, nil
}

// Name returns the script name used in logs.
func (s *LuaSystem) Name() string {
	return s.name
}

// Execute calls the script's update function with the frame's delta time and
// the current entity count. Script errors are logged and counted.
func (s *LuaSystem) Execute(frame *engine.UpdateFrame) {
	s.world = frame.World
	defer func() { s.world = nil }()

	s.calls++
	err := s.vm.CallByParam(lua.P{
		Fn:      s.vm.GetGlobal(UpdateFunc),
		NRet:    0,
		Protect: true,
	}, lua.LNumber(frame.DeltaTime), lua.LNumber(frame.World.Count()))
	if err != nil {
		s.errors++
		s.log.Error("lua update error",
			zap.String("script", s.name),
			zap.Uint64("frame", frame.Frame),
			zap.Error(err))
	}
}

// Errors returns how many update calls failed.
func (s *LuaSystem) Errors() int {
	return s.errors
}

// Calls returns how many times update was called.
func (s *LuaSystem) Calls() int {
	return s.calls
}

// Global returns a global of the script as a Go value: float64, string, bool
// or nil.
func (s *LuaSystem) Global(name string) any {
	switch v := s.vm.GetGlobal(name).(type) {
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case lua.LBool:
		return bool(v)
	default:
		return nil
	}
}

// Close releases the Lua VM.
func (s *LuaSystem) Close() {
	s.vm.Close()
}

func (s *LuaSystem) luaEntityCount(L *lua.LState) int {
	if s.world == nil {
		L.RaiseError("entity_count called outside update")
		return 0
	}
	L.Push(lua.LNumber(s.world.Count()))
	return 1
}

func (s *LuaSystem) luaCapacity(L *lua.LState) int {
	if s.world == nil {
		L.RaiseError("capacity called outside update")
		return 0
	}
	L.Push(lua.LNumber(s.world.Capacity()))
	return 1
}
