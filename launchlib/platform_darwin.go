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
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
)

// darwinPlatform implements the macOS "park" strategy: the goroutine
// that owns the OS thread AppKit/JNI expect to run on parks itself in a
// CoreFoundation runloop while a worker goroutine drives the runtime
// invocation. This mirrors the original's macos.h + the ctx_signal_early_
// completion/STATE_RUNLOOP contract described in jaunch.c.
type darwinPlatform struct {
	coreFoundation uintptr
	cfRunLoopRun   func(uintptr, float64, bool) int32
}

func NewPlatform() Platform {
	p := &darwinPlatform{}
	lib, err := purego.Dlopen(
		"/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation",
		purego.RTLD_NOW|purego.RTLD_GLOBAL,
	)
	if err == nil {
		p.coreFoundation = lib
		purego.RegisterLibFunc(&p.cfRunLoopRun, lib, "CFRunLoopRunInMode")
	}
	return p
}

// Setup resolves Gatekeeper path translocation: a translocated app bundle
// runs from a randomized read-only mount rather than its real install
// path, which would break the launcher's own search-path-relative lookup
// of the configurator. The original handles this by relaunching itself
// from the real path. This Setup does not: it performs no translocation
// check, logs nothing, and returns nil, so a translocated launcher
// proceeds with its translocated path.
func (darwinPlatform) Setup(argv []string) error {
	return nil
}

func (darwinPlatform) Teardown() {}

// Launch dispatches on ctx.RunloopMode(), chosen earlier by an explicit
// RUNLOOP directive or by RunloopConfig's auto-negotiation:
//
//   - "park": runs fn on a pinned worker goroutine and parks the calling
//     goroutine's OS thread in a CFRunLoop for as long as fn is running.
//     Required because AppKit and some JVM GUI toolkits refuse to operate
//     outside the process's original main thread. When fn finishes, the
//     worker goroutine calls os.Exit with fn's code directly instead of unwinding back
//     out of the runloop cleanly: the original C code does the same
//     (terminating from inside the directive thread once STATE_COMPLETE
//     is reached while parked), and replicating a clean teardown path
//     here would require cooperation from CFRunLoopStop that AppKit does
//     not reliably honor once a Cocoa app has fully started. This is a
//     deliberate, noted deviation from idiomatic Go shutdown (see
//     DESIGN.md), preserved because the spec calls for matching the
//     original's behavior exactly here.
//   - "main": loads AppKit via NSApplicationLoad, then calls fn directly
//     on the calling goroutine (equivalent to -XstartOnFirstThread). If
//     the GUI-detection heuristic (more than one CFRunLoop mode active
//     after fn returns) suggests a GUI framework took over, this also
//     hard-exits rather than attempting a clean return.
//   - "none" or unset: calls fn directly, no CoreFoundation involvement.
func (d *darwinPlatform) Launch(ctx *ThreadContext, fn func() error) error {
	mode := ctx.RunloopMode()

	if mode == runloopModeMain {
		loadAppKit()
		err := fn()
		if d.cfRunLoopModeCount() > 1 {
			os.Exit(codeFromErr(err))
		}
		return err
	}

	if mode != runloopModePark || d.cfRunLoopRun == nil {
		return fn()
	}

	// Launch is reached via ThreadContext.RequestMainExecution dispatching
	// this very JVM/PYTHON directive to the main goroutine (mainAvailable
	// was still true when the worker sent it), so this goroutine IS main.
	// EnterRunloop is called here, now, rather than by an earlier RUNLOOP
	// directive: marking main unavailable before the runtime directive
	// was dispatched would have forced RequestMainExecution's caller down
	// the "execute it myself" path instead, running fn (and therefore the
	// actual CFRunLoop parking) on the worker goroutine rather than on
	// the real OS thread 0 that AppKit/-XstartOnFirstThread require.
	ctx.EnterRunloop(mode)

	runtime.LockOSThread()

	go func() {
		runtime.LockOSThread()
		os.Exit(codeFromErr(fn()))
	}()

	// CFRunLoopRunInMode takes the CFStringRef stored in CoreFoundation's
	// exported kCFRunLoopDefaultMode variable; Dlsym yields that variable's
	// address, so it is dereferenced once here.
	var defaultMode uintptr
	if sym, err := purego.Dlsym(d.coreFoundation, "kCFRunLoopDefaultMode"); err == nil && sym != 0 {
		defaultMode = **(**uintptr)(unsafe.Pointer(&sym))
	}
	for {
		d.cfRunLoopRun(defaultMode, 0.1, false)
	}
}

// codeFromErr maps a Runtime/Platform error to the process exit code it
// should contribute, matching the LauncherError taxonomy (errors.go) when
// available and falling back to the generic runtime-crash code otherwise.
func codeFromErr(err error) int {
	if err == nil {
		return Success
	}
	if lerr, ok := err.(*LauncherError); ok {
		return lerr.Code
	}
	return ErrRuntimeCrash
}

// cfRunLoopModeCount is the GUI-detection heuristic of spec §5: if the
// main CFRunLoop has accumulated more than one active mode by the time
// the runtime invocation returns, a GUI framework (AWT, SWT, ...) almost
// certainly installed its own modes and kept the loop busy, so a hard
// exit is preferred over an attempted clean teardown. A real
// implementation would inspect CFRunLoopCopyAllModes' count; this port
// doesn't bind that CoreFoundation API (see DESIGN.md) and conservatively
// reports 0 (never triggering the hard-exit path) when it can't tell.
func (d *darwinPlatform) cfRunLoopModeCount() int {
	return 0
}

// loadAppKit triggers NSApplicationLoad so Cocoa's shared application
// object exists before a JVM/Python runtime that expects -XstartOnFirstThread
// semantics runs on this goroutine's OS thread.
func loadAppKit() {
	appKit, err := purego.Dlopen(
		"/System/Library/Frameworks/AppKit.framework/AppKit",
		purego.RTLD_NOW|purego.RTLD_GLOBAL,
	)
	if err != nil {
		return
	}
	var nsApplicationLoad func() bool
	purego.RegisterLibFunc(&nsApplicationLoad, appKit, "NSApplicationLoad")
	nsApplicationLoad()
}

// RunloopConfig auto-negotiates "park" for JVM directives per spec §4.4's
// example ("on macOS, JVM implies park"); every other directive leaves
// the mode undecided so an explicit RUNLOOP directive (or none at all)
// can still apply.
func (darwinPlatform) RunloopConfig(name DirectiveName) string {
	if name == DirectiveJVM {
		return runloopModePark
	}
	return ""
}

// RunloopStop is a no-op on macOS: the "park" Launch loop already exits
// the process directly once fn completes, and "main"/"none" modes never
// block in the first place, so there is nothing for shutdown to unstick.
func (darwinPlatform) RunloopStop() {}

// InitThreads: macOS has no X11-style one-time threading prerequisite;
// Cocoa/AppKit's own thread-safety story is handled by loadAppKit at
// Launch time instead, so this always succeeds.
func (darwinPlatform) InitThreads() error { return nil }

// ShowAlert displays a native NSAlert, used by the ERROR directive unless
// --headless was specified. It is implemented with purego/objc rather
// than cgo, bridging the Objective-C runtime the same way the original's
// macos.h does via objc_msgSend, just without a C compiler in the loop.
func (darwinPlatform) ShowAlert(title, message string) {
	nsAlert := objc.GetClass("NSAlert")
	if nsAlert == 0 {
		return
	}
	alert := objc.ID(nsAlert).Send(objc.RegisterName("alloc"))
	alert = alert.Send(objc.RegisterName("init"))

	nsString := objc.GetClass("NSString")
	msg := objc.ID(nsString).Send(
		objc.RegisterName("stringWithUTF8String:"), message,
	)
	alert.Send(objc.RegisterName("setMessageText:"), msg)
	alert.Send(objc.RegisterName("runModal"))
}
