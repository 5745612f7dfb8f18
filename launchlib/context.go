// Copyright 2025 Palantir Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package launchlib

import "sync"

// Runloop mode strings, per spec §3/§5. "unset" is represented as the
// empty string rather than its own constant so RunloopMode()'s zero
// value already means "undecided" without a separate sentinel.
const (
	runloopModeMain = "main"
	runloopModePark = "park"
	runloopModeNone = "none"
	runloopModeAuto = "auto"
)

// ThreadState is the state of the cross-thread handoff between the main
// goroutine (which alone is allowed to touch certain platform APIs, e.g.
// Cocoa/AppKit or a parked CoreFoundation runloop) and the directive
// worker goroutine that walks the configurator's output.
type ThreadState int

const (
	// StateWaiting: no directive is pending; the main goroutine is idle.
	StateWaiting ThreadState = iota
	// StateExecuting: a directive has been handed to the main goroutine
	// and it is currently running.
	StateExecuting
	// StateRunloop: the main goroutine has entered a platform runloop
	// (macOS park mode) and won't return to StateWaiting on its own; the
	// worker must keep executing subsequent directives itself until the
	// runloop is torn down.
	StateRunloop
	// StateComplete: the worker has processed every directive and the
	// main goroutine should stop waiting and exit.
	StateComplete
)

// ThreadContext is the Go analogue of the original C `ctx` struct: one
// mutex/condition-variable pair coordinating a single pending directive
// between two goroutines, plus the result it produced. It intentionally
// mirrors original_source/src/c/jaunch.c's ctx_lock/ctx_wait_for_state_change/
// ctx_set_state/ctx_signal_main contract rather than reinventing a
// different synchronization shape.
type ThreadContext struct {
	mu   sync.Mutex
	cond *sync.Cond

	state ThreadState

	pendingDirective DirectiveName
	pendingArgv      []string
	directiveResult  int
	resultReady      bool

	runloopMode string
	exitCode    int

	// mainAvailable is false once the main goroutine has parked in a
	// runloop (StateRunloop) or finished (StateComplete); while false the
	// worker must execute directives itself instead of handing them off.
	mainAvailable bool
}

// NewThreadContext returns a ThreadContext ready for a single launcher
// invocation. The main goroutine starts out available.
func NewThreadContext() *ThreadContext {
	tc := &ThreadContext{state: StateWaiting, mainAvailable: true}
	tc.cond = sync.NewCond(&tc.mu)
	return tc
}

// MainThreadAvailable reports whether the main goroutine can currently
// accept a directive to execute on its behalf.
func (tc *ThreadContext) MainThreadAvailable() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.mainAvailable
}

// RequestMainExecution hands a directive to the main goroutine and blocks
// until it reports a result. Callers must have already confirmed
// MainThreadAvailable(); if the main goroutine parks in a runloop
// (EnterRunloop) while this directive is outstanding, this returns Success
// at once instead of waiting for a result.
func (tc *ThreadContext) RequestMainExecution(name DirectiveName, argv []string) int {
	tc.mu.Lock()
	tc.pendingDirective = name
	tc.pendingArgv = argv
	tc.resultReady = false
	tc.state = StateExecuting
	tc.cond.Broadcast()

	for !tc.resultReady && tc.state != StateRunloop {
		tc.cond.Wait()
	}
	if tc.resultReady {
		result := tc.directiveResult
		tc.mu.Unlock()
		return result
	}
	// Early completion (EnterRunloop fired while this directive was
	// outstanding): the main goroutine has parked in a platform runloop
	// rather than returning a result the ordinary way. The outstanding
	// directive (in production, the JVM/PYTHON directive whose
	// Platform.Launch parked) is reported as SUCCESS; the
	// worker is now free to keep processing subsequent directives on
	// its own goroutine, since mainAvailable is already false.
	tc.mu.Unlock()
	return Success
}

// WaitForWork blocks the main goroutine until the worker either requests
// a directive (returns true, with the directive to run) or signals
// completion (returns false). StateRunloop is waited on exactly like
// StateWaiting: once the main goroutine has parked in a platform runloop
// it has no further role in directive dispatch (the worker executes
// everything itself from that point on, per MainThreadAvailable), so
// there is nothing to hand back here until either a fresh directive
// somehow becomes pending (not currently possible once parked) or the
// worker signals StateComplete. Returning immediately on StateRunloop
// would busy-spin this goroutine for the entire remaining lifetime of
// the directive stream, since nothing re-wakes the caller in the
// meantime.
func (tc *ThreadContext) WaitForWork() (name DirectiveName, argv []string, ok bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	for tc.state == StateWaiting || tc.state == StateRunloop {
		tc.cond.Wait()
	}

	switch tc.state {
	case StateExecuting:
		return tc.pendingDirective, tc.pendingArgv, true
	default:
		// StateComplete: the only other state the loop above can exit on.
		return "", nil, false
	}
}

// CompleteMainExecution reports the result of a directive the main
// goroutine just finished executing, and returns the main loop to
// StateWaiting unless a runloop request raced in while executing (see
// EnterRunloop).
func (tc *ThreadContext) CompleteMainExecution(result int) {
	tc.mu.Lock()
	tc.directiveResult = result
	tc.resultReady = true
	if tc.state == StateExecuting {
		tc.state = StateWaiting
	}
	tc.cond.Broadcast()
	tc.mu.Unlock()
}

// EnterRunloop marks the main goroutine as parked in a platform runloop
// and therefore unavailable for further direct dispatch; the worker must
// execute subsequent directives on its own goroutine from this point on.
// This corresponds to the original's ctx_signal_early_completion plus
// STATE_RUNLOOP transition. In production it is called by the macOS
// Platform.Launch "park" branch, on the main goroutine, while the JVM/PYTHON
// directive it is running is still pending.
func (tc *ThreadContext) EnterRunloop(mode string) {
	tc.mu.Lock()
	tc.runloopMode = mode
	tc.state = StateRunloop
	tc.mainAvailable = false
	tc.cond.Broadcast()
	tc.mu.Unlock()
}

// RunloopMode returns the mode most recently chosen for the platform
// runloop, either explicitly via a RUNLOOP directive argument or by
// platform auto-configuration.
func (tc *ThreadContext) RunloopMode() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.runloopMode
}

// SetRunloopMode records a runloop mode (auto-negotiated or from a RUNLOOP
// directive) without transitioning state; no directive is dispatched for
// it. The StateRunloop transition happens later, in EnterRunloop.
func (tc *ThreadContext) SetRunloopMode(mode string) {
	tc.mu.Lock()
	tc.runloopMode = mode
	tc.mu.Unlock()
}

// Complete marks all directive processing finished with the given
// aggregate exit code, waking the main goroutine so it can return.
func (tc *ThreadContext) Complete(exitCode int) {
	tc.mu.Lock()
	tc.exitCode = exitCode
	tc.state = StateComplete
	tc.mainAvailable = false
	tc.cond.Broadcast()
	tc.mu.Unlock()
}

// ExitCode returns the aggregate exit code recorded by Complete.
func (tc *ThreadContext) ExitCode() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.exitCode
}

// State returns the current state, mainly for tests and debug logging.
func (tc *ThreadContext) State() ThreadState {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.state
}