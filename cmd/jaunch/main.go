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

// Command jaunch is the native launcher described in SPEC_FULL.md: it
// delegates to an external configurator for every configuration decision,
// then loads and invokes a JVM or CPython interpreter in this very
// process, using the directive stream the configurator produced.
package main

import (
	"context"
	"os"
	"runtime"

	"github.com/nativelaunch/jaunch-go/launchlib"
)

func init() {
	// The goroutine that calls main() is also the one locked to the
	// process's actual first OS thread (init still runs on that thread, and
	// LockOSThread here keeps the Go scheduler from ever moving it, which
	// CoreFoundation/AppKit and -XstartOnFirstThread-style JNI setups both
	// require).
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	argv := os.Args[1:]

	headless := false
	verbosity := launchlib.VerbosityQuiet
	var forwarded []string
	for _, a := range argv {
		switch a {
		case "--debug":
			if verbosity < launchlib.VerbosityDebug {
				verbosity++
			}
		case "--headless":
			headless = true
		default:
			forwarded = append(forwarded, a)
		}
	}

	log := launchlib.NewLogger(os.Stderr, verbosity, "JAUNCH")
	platform := launchlib.NewPlatform()

	if err := platform.Setup(os.Args); err != nil {
		log.Fatalf(launchlib.ErrBadLocking, "platform setup failed", "error", err)
	}
	defer platform.Teardown()

	launchlib.InstallCrashHandler(log, platform, headless)

	exePath, err := os.Executable()
	if err != nil {
		log.Fatalf(launchlib.ErrCommandPath, "could not determine own executable path", "error", err)
	}
	// A symlink-invoked launcher (common for Homebrew/package-manager
	// installs) must search for the configurator beside the real binary,
	// not beside the symlink; CanonicalPath resolves that the same way
	// the original's canonical_path() does.
	exePath = launchlib.CanonicalPath(exePath)

	naming := launchlib.CurrentPlatformNaming()
	configuratorPath, err := launchlib.FindConfigurator(exePath, launchlib.ConfiguratorSearchDirs, naming, launchlib.FileExists)
	if err != nil {
		log.Fatalf(launchlib.ErrCommandPath, "could not locate the jaunch configurator", "error", err)
	}
	log.Debugf("using configurator", "path", configuratorPath)

	configuratorArgv := append([]string{launchlib.TargetArchArgument(naming.Arch)}, forwarded...)

	lines, err := launchlib.RunConfigurator(context.Background(), configuratorPath, configuratorArgv, os.Stderr)
	if err != nil {
		if lerr, ok := err.(*launchlib.LauncherError); ok {
			log.Fatalf(lerr.Code, "configurator failed", "error", err)
		}
		log.Fatalf(launchlib.ErrExec, "configurator failed", "error", err)
	}

	directives, trailingDiscarded, err := launchlib.ParseDirectiveStream(lines)
	if err != nil {
		if lerr, ok := err.(*launchlib.LauncherError); ok {
			log.Fatalf(lerr.Code, "malformed directive stream", "error", err)
		}
		log.Fatalf(launchlib.ErrBadDirectiveSyntax, "malformed directive stream", "error", err)
	}
	if trailingDiscarded > 0 {
		log.Warnf("discarding lines after ABORT", "count", trailingDiscarded)
	}

	runtimes := launchlib.NewRuntimeRegistry()
	runtimes.Register(launchlib.DirectiveJVM, launchlib.NewJVMRuntime(log))
	runtimes.Register(launchlib.DirectivePython, launchlib.NewPythonRuntime(log))

	ctx := launchlib.NewThreadContext()
	interp := launchlib.NewInterpreter(log, ctx, platform, runtimes, headless)

	go interp.Run(directives)

	for {
		name, workArgv, ok := ctx.WaitForWork()
		if !ok {
			break
		}
		result := interp.ExecuteDirective(launchlib.Directive{Name: name, Argv: workArgv})
		ctx.CompleteMainExecution(result)
	}

	return ctx.ExitCode()
}
