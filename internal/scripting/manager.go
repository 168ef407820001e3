package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// sharedKey is the reserved key for scripts loaded via LoadShared. CallHook
// falls back to this VM when no per-companion VM is found.
const sharedKey = "__shared__"

// Manager owns sandboxed LStates keyed by companion ID plus one shared state,
// and dispatches named hooks to them.
//
// Manager is safe for concurrent CallHook after loading completes. Each LState
// is single-threaded; the manager mutex serializes calls.
type Manager struct {
	mu        sync.Mutex
	states    map[string]*lua.LState
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager whose hook calls may each run at most
// instLimit opcodes.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns a non-nil Manager with no loaded states.
func NewManager(instLimit int, logger *zap.Logger) *Manager {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Manager{
		states:    make(map[string]*lua.LState),
		instLimit: instLimit,
		logger:    logger,
	}
}

// LoadShared loads every *.lua file in scriptDir into the shared VM used by
// all companions without their own scripts.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Shared VM is registered; returns error on Lua load failure.
func (m *Manager) LoadShared(scriptDir string) error {
	return m.loadInto(sharedKey, scriptDir)
}

// Load loads every *.lua file in scriptDir into a VM dedicated to key.
//
// Precondition: key must be non-empty; scriptDir must be a readable directory.
func (m *Manager) Load(key, scriptDir string) error {
	return m.loadInto(key, scriptDir)
}

func (m *Manager) loadInto(key, scriptDir string) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L, key)
	for _, path := range luaFiles {
		if err := withBudget(L, m.instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = L
	m.mu.Unlock()

	m.logger.Info("scripts loaded",
		zap.String("key", key),
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function in key's VM, falling back to
// the shared VM. It returns the hook's first result as a string.
//
// Postcondition: Returns ("", false) when no VM exists, the hook is not
// defined, it returns a non-string or empty value, or it fails. Lua runtime
// errors (including exhausted instruction budgets) are logged at Warn level
// and never propagated.
func (m *Manager) CallHook(key, hook string, args ...string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[key]
	if !ok {
		L = m.states[sharedKey]
	}
	if L == nil {
		return "", false
	}

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return "", false
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = lua.LString(a)
	}
	err := withBudget(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return "", false
	}

	ret := L.Get(-1)
	L.Pop(1)
	s, isStr := ret.(lua.LString)
	if !isStr || s == "" {
		return "", false
	}
	return string(s), true
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, L := range m.states {
		L.Close()
		delete(m.states, k)
	}
}
