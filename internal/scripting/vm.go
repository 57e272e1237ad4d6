// Package scripting runs user-supplied JavaScript strategies against the
// trial engine for piloting payoffs and dry-running lab parameters. A
// strategy defines decide(trial) and returns OPEN or STOP; it only ever
// sees the pre-reveal projection, so a scripted participant cannot peek at
// the bomb.
package scripting

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"bret/internal/trial"
)

// Action is a strategy decision.
type Action string

const (
	ActionOpen Action = "open"
	ActionStop Action = "stop"
)

// LogEntry represents a single log message from the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// VM wraps a goja runtime with sandbox restrictions and global function
// injection.
type VM struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int
}

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second
)

// NewVM creates a sandboxed goja runtime with global functions injected.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		maxLogs: 500,
	}
	vm.injectGlobalFunctions()
	return vm
}

// injectGlobalFunctions registers log, console.log, and the action
// constants, and blocks dangerous globals.
func (vm *VM) injectGlobalFunctions() {
	// log(...args) — appends to log buffer
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		vm.logsMu.Lock()
		if len(vm.logs) >= vm.maxLogs {
			vm.logs = vm.logs[1:]
		}
		vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
		vm.logsMu.Unlock()

		return goja.Undefined()
	})

	// console.log — alias for log
	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	// Decision constants for decide() return values.
	vm.runtime.Set("OPEN", string(ActionOpen))
	vm.runtime.Set("STOP", string(ActionStop))

	// Math is already available in goja by default.
	// Block dangerous globals.
	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("fetch", goja.Undefined())
	vm.runtime.Set("XMLHttpRequest", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

// Execute runs user script source code. This should be called once per
// batch to register decide().
func (vm *VM) Execute(source string) error {
	return vm.runWithTimeout(scriptInitTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		_, err := vm.runtime.RunString(source)
		if err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		return nil
	})
}

// HasDecideFunc returns true if the user script defined a decide() function.
func (vm *VM) HasDecideFunc() bool {
	fn := vm.runtime.Get("decide")
	if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
		return false
	}
	_, ok := goja.AssertFunction(fn)
	return ok
}

// CallDecide calls the user-defined decide() with the trial's pre-reveal
// projection and interprets the returned action.
func (vm *VM) CallDecide(v trial.View) (Action, error) {
	var action Action
	err := vm.runWithTimeout(scriptCallTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()

		fn := vm.runtime.Get("decide")
		if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
			return fmt.Errorf("decide() function is not defined")
		}
		callable, ok := goja.AssertFunction(fn)
		if !ok {
			return fmt.Errorf("decide is not a function")
		}

		result, err := callable(goja.Undefined(), vm.runtime.ToValue(viewObject(v)))
		if err != nil {
			return fmt.Errorf("decide() error: %w", err)
		}

		switch Action(result.String()) {
		case ActionOpen:
			action = ActionOpen
		case ActionStop:
			action = ActionStop
		default:
			return fmt.Errorf("decide() must return OPEN or STOP, got %q", result.String())
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// GetLogs returns a copy of the current log buffer.
func (vm *VM) GetLogs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

// ClearLogs clears the log buffer.
func (vm *VM) ClearLogs() {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	vm.logs = vm.logs[:0]
}

// viewObject flattens the projection into the plain object decide() sees.
// Only view fields go in; an unrevealed trial contributes no bomb data.
func viewObject(v trial.View) map[string]any {
	obj := map[string]any{
		"session_id":     v.SessionID,
		"box_count":      v.BoxCount,
		"opened_count":   v.OpenedCount,
		"payoff_per_box": v.PayoffPerBox.InexactFloat64(),
		"revealed":       v.Revealed,
	}
	if v.Revealed {
		obj["outcome"] = string(v.Outcome)
		if v.BombIndex != nil {
			obj["bomb_index"] = *v.BombIndex
		}
		if v.Payoff != nil {
			obj["payoff"] = v.Payoff.InexactFloat64()
		}
	}
	return obj
}

func (vm *VM) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		vm.runtime.Interrupt("script timeout")
		<-done
		vm.runtime.ClearInterrupt()
		return fmt.Errorf("script timed out after %s", timeout)
	}
}
