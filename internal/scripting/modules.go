package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.log(msg)  logs msg at info level, tagged with the VM key
//	engine.key       the VM key (companion ID, or "__shared__")
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, key string) {
	engine := L.NewTable()
	L.SetField(engine, "key", lua.LString(key))
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("lua",
			zap.String("key", key),
			zap.String("msg", L.CheckString(1)),
		)
		return 0
	}))
	L.SetGlobal("engine", engine)
}
