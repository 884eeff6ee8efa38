// Package scripting runs health scripts in sandboxed GopherLua states.
// Scripts see plain numbers and strings; the only bridge to the wound
// engine is the adapter in strategy.go.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes one file load or hook call may
// execute when no limit is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted wraps a Lua error raised because a run used up its
// opcode budget.
var ErrBudgetExhausted = errors.New("scripting: instruction budget exhausted")

var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blockedGlobals are base-library functions that reach the filesystem,
// compile new chunks or steer the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// budget cancels itself once Done has been polled ops times. GopherLua polls
// Done once per opcode while a context is set.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func newBudget(ops int) *budget {
	if ops <= 0 {
		ops = DefaultInstructionLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(ops))
	return b
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func (b *budget) exhausted() bool { return b.left.Load() <= 0 }

// run executes fn on L with a fresh budget of ops opcodes and clears it
// afterwards.
func run(L *lua.LState, ops int, fn func() error) error {
	b := newBudget(ops)
	L.SetContext(b)
	defer func() {
		L.RemoveContext()
		b.cancel()
	}()
	err := fn()
	if err != nil && b.exhausted() {
		return fmt.Errorf("%w: %v", ErrBudgetExhausted, err)
	}
	return err
}

// NewSandboxedState returns an LState with only the base, table, string and
// math libraries, none of blockedGlobals, and a budget of instLimit opcodes
// (DefaultInstructionLimit when instLimit <= 0) covering whatever runs on it
// next. Manager arms a fresh budget for every load and call.
//
// The caller owns the state and must Close it.
func NewSandboxedState(instLimit int) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(newBudget(instLimit))
	return L
}
