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

import (
	"os"
	"strconv"
)

// Interpreter is the directive-processing worker described in spec §4.4/
// §5: it owns the parsed directive stream, the runtime registry, and the
// platform adapter, and drives the ThreadContext state machine while
// deciding, directive by directive, whether to run on the main goroutine
// or (once main has parked or finished) on its own.
type Interpreter struct {
	log      *Logger
	ctx      *ThreadContext
	platform Platform
	runtimes *RuntimeRegistry
	headless bool
}

// NewInterpreter wires together the pieces Run/ExecuteDirective need.
func NewInterpreter(log *Logger, ctx *ThreadContext, platform Platform, runtimes *RuntimeRegistry, headless bool) *Interpreter {
	return &Interpreter{log: log, ctx: ctx, platform: platform, runtimes: runtimes, headless: headless}
}

// Run is the directive-worker goroutine's body (spec §5 "process_
// directives"): it walks directives in stream order, negotiates an
// auto-runloop mode before each one if none has been chosen yet,
// dispatches each to the main goroutine when available or executes it
// itself otherwise, OR-aggregates the per-directive result codes, and
// finally tears down cached runtimes and flips the ThreadContext to
// StateComplete. It returns the aggregate exit code, mainly so a stub
// Platform (used in tests) can observe completion without going through
// os.Exit; on platforms whose Launch hard-exits mid-directive (macOS
// park mode), this return value is never actually observed by main.
func (in *Interpreter) Run(directives []Directive) int {
	exitCode := Success

	for _, d := range directives {
		in.negotiateRunloop(d.Name)

		var result int
		if in.ctx.MainThreadAvailable() {
			result = in.ctx.RequestMainExecution(d.Name, d.Argv)
		} else {
			in.log.Debugf("main thread unavailable, executing directive on worker", "directive", string(d.Name))
			result = in.ExecuteDirective(d)
		}
		exitCode |= result
	}

	in.runtimes.CleanupAll()
	in.platform.RunloopStop()
	in.ctx.Complete(exitCode)
	return exitCode
}

// negotiateRunloop implements spec §4.4's "before executing each
// directive, if runloop_mode is still unset, give the platform a chance
// to set it based on the directive's kind" rule. This only locks in the
// mode (so Platform.Launch knows which strategy to use once a JVM/PYTHON
// directive actually runs); it deliberately does NOT dispatch a
// synthetic RUNLOOP directive through the main thread the way an
// earlier revision did. Entering a blocking runloop (macOS "park") is
// itself the early-completion event spec §5 describes, and that can
// only happen correctly from inside Platform.Launch, on whichever
// goroutine is actually running the upcoming JVM/PYTHON directive —
// which, at negotiation time, is still the main goroutine. Dispatching
// a separate RUNLOOP directive here would park main (and mark it
// unavailable) before the runtime directive is even sent to it, forcing
// the runtime invocation itself onto the worker goroutine instead of
// the real OS thread 0 that AppKit/-XstartOnFirstThread requires.
func (in *Interpreter) negotiateRunloop(upcoming DirectiveName) {
	if in.ctx.RunloopMode() != "" {
		return
	}
	mode := in.platform.RunloopConfig(upcoming)
	if mode == "" {
		return
	}
	in.ctx.SetRunloopMode(mode)
}

// ExecuteDirective runs a single directive's semantics (spec §4.4's
// per-directive contract table) and returns its result code. It may be
// called from either the main goroutine (the common case, dispatched via
// ThreadContext.RequestMainExecution) or directly from the worker
// goroutine once main is unavailable (parked in a runloop, or never
// needed for a given platform).
func (in *Interpreter) ExecuteDirective(d Directive) int {
	switch d.Name {
	case DirectiveJVM, DirectivePython:
		return in.executeRuntime(d)
	case DirectiveSetCwd:
		return in.executeSetCwd(d.Argv)
	case DirectiveInitThreads:
		return in.executeInitThreads()
	case DirectiveRunloop:
		return in.executeRunloop(d.Argv)
	case DirectiveError:
		return in.executeError(d.Argv)
	case DirectiveAbort:
		// ABORT never reaches here in practice: ParseDirectiveStream
		// already truncates the stream at ABORT. Treated as a no-op for
		// robustness against a caller handing one in directly.
		return Success
	default:
		in.log.Errorf("unknown directive", "directive", string(d.Name))
		return ErrUnknownDirective
	}
}

// executeRuntime looks up the Runtime registered for a JVM/PYTHON
// directive and invokes it through Platform.Launch, which decides
// per-platform whether this goroutine runs it directly or parks while a
// worker goroutine does.
func (in *Interpreter) executeRuntime(d Directive) int {
	rt, ok := in.runtimes.Lookup(d.Name)
	if !ok {
		in.log.Errorf("no runtime registered for directive", "directive", string(d.Name))
		return ErrUnknownDirective
	}
	err := in.platform.Launch(in.ctx, func() error { return rt.Invoke(d.Argv) })
	if err != nil {
		in.log.Errorf("runtime invocation failed", "directive", string(d.Name), "error", err)
		return codeFromErr(err)
	}
	return Success
}

// executeSetCwd changes the process's working directory (spec §4.4
// SETCWD).
func (in *Interpreter) executeSetCwd(argv []string) int {
	if len(argv) != 1 {
		in.log.Errorf("SETCWD requires exactly one argument", "argc", len(argv))
		return ErrArgcOutOfBounds
	}
	if err := os.Chdir(argv[0]); err != nil {
		in.log.Errorf("chdir failed", "dir", argv[0], "error", err)
		return ErrRuntimeCrash
	}
	return Success
}

// executeInitThreads performs the platform's one-time threading
// prerequisite (spec §4.4 INIT_THREADS).
func (in *Interpreter) executeInitThreads() int {
	if err := in.platform.InitThreads(); err != nil {
		in.log.Errorf("INIT_THREADS failed", "error", err)
		return codeFromErr(err)
	}
	return Success
}

// executeRunloop locks in the runloop mode without yet transitioning
// ThreadContext out of normal dispatch. The mode is set at most once: an
// explicit argument applies only while no mode has been chosen, and a
// mode already set (by auto-negotiation or an earlier RUNLOOP) is kept,
// with a warning if the argument asks for a different one. The actual StateRunloop
// transition (and the mainAvailable=false it implies) happens later,
// inside Platform.Launch, once the JVM/PYTHON directive this mode was
// chosen for is actually running — entering it here would make that
// directive dispatch to the worker goroutine instead of main. Per spec
// §4.4's table, RUNLOOP always reports SUCCESS.
func (in *Interpreter) executeRunloop(argv []string) int {
	mode := ""
	if len(argv) > 0 {
		mode = argv[0]
	}
	if current := in.ctx.RunloopMode(); current != "" {
		if mode != "" && mode != current {
			in.log.Warnf("runloop mode already set; ignoring RUNLOOP argument", "mode", current, "requested", mode)
		}
		return Success
	}
	if mode == "" || mode == runloopModeAuto {
		mode = runloopModeNone
	}
	in.ctx.SetRunloopMode(mode)
	return Success
}

// executeError implements the ERROR directive (spec §4.4): logs every
// message line, shows an alert unless headless, and returns the clamped
// exit code.
func (in *Interpreter) executeError(argv []string) int {
	if len(argv) < 1 {
		in.log.Errorf("ERROR directive requires at least an exit code argument")
		return ErrBadDirectiveSyntax
	}
	code, err := strconv.Atoi(argv[0])
	if err != nil {
		in.log.Errorf("ERROR directive has non-numeric exit code", "value", argv[0])
		return ErrBadDirectiveSyntax
	}
	messages := argv[1:]
	for _, m := range messages {
		in.log.Errorf(m)
	}
	clamped := ClampErrorCode(code)
	if !in.headless {
		body := "An unknown error occurred."
		if len(messages) > 0 {
			body = ""
			for i, m := range messages {
				if i > 0 {
					body += "\n"
				}
				body += m
			}
		}
		in.platform.ShowAlert("jaunch", body)
	}
	return clamped
}
