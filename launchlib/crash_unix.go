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

//go:build !windows

package launchlib

import (
	"os"
	"os/signal"
	"syscall"
)

// InstallCrashHandler starts a goroutine that watches for SIGABRT (spec
// §4.6/§7: a crash inside the embedded runtime, or raised by the cgo JNI
// layer on an unrecoverable JNI error, surfaces as abort()). Go cannot
// install a true C-level signal(3) handler without cgo; os/signal's
// Notify is the standard library's own recommended replacement and is
// sufficient here because the embedded runtimes (JVM via cgo, CPython
// via purego) both raise SIGABRT as a real POSIX signal the Go runtime's
// signal machinery observes. On delivery this logs, optionally alerts,
// and calls syscall.Exit directly to emulate the original's _exit
// (skipping deferred Go cleanup, same as the original skips C atexit
// handlers).
func InstallCrashHandler(log *Logger, platform Platform, headless bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGABRT)
	go func() {
		<-sigCh
		log.Errorf("runtime aborted (SIGABRT)")
		if !headless {
			platform.ShowAlert("jaunch", "The embedded runtime crashed unexpectedly.")
		}
		syscall.Exit(ErrRuntimeCrash)
	}()
}
