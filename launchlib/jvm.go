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
	"strconv"
	"sync"
)

// JVMRuntime implements Runtime for the JVM directive. The heavy lifting
// (JNI_CreateJavaVM, FindClass, CallStaticVoidMethodA, ...) lives in
// jvm_cgo.go behind a tiny jvmBackend interface so this file stays
// platform-agnostic and can be unit tested with a fake backend.
type JVMRuntime struct {
	log     *Logger
	backend jvmBackend

	mu      sync.Mutex
	vm      jvmHandle
	library *SharedLibrary
}

// jvmHandle is an opaque reference to a created JavaVM, held across
// directives so a second JVM directive attaches to the first VM instead
// of creating a new one, matching the original's cached_jvm global.
type jvmHandle interface{}

// jvmBackend is implemented by jvm_cgo.go (JNI via cgo) and can be faked
// in tests. It intentionally mirrors launch_jvm's contract in
// original_source/src/c/jvm.h rather than inventing a different shape.
type jvmBackend interface {
	CreateJavaVM(libPath string, vmArgs []string) (jvmHandle, *SharedLibrary, error)
	AttachCurrentThread(vm jvmHandle) error
	InvokeMain(vm jvmHandle, mainClass string, mainArgs []string) error
	DetachCurrentThread(vm jvmHandle) error
	DestroyJavaVM(vm jvmHandle) error
}

// NewJVMRuntime constructs a JVMRuntime using the real cgo/JNI backend.
func NewJVMRuntime(log *Logger) *JVMRuntime {
	return &JVMRuntime{log: log.Named("JVM"), backend: cgoJVMBackend{}}
}

// Invoke parses argv as:
//
//	[0]            libjvm path
//	[1]            jvm option count (decimal)
//	[2:2+n]        jvm options
//	[2+n]          fully qualified main class, slash-separated
//	[3+n:]         main program arguments
//
// and either creates a new cached JVM or attaches the current goroutine's
// OS thread to the one already cached, per original_source/src/c/jvm.h.
func (j *JVMRuntime) Invoke(argv []string) error {
	if len(argv) < 3 {
		return newLauncherError(ErrArgcOutOfBounds, "JVM directive requires at least 3 arguments", nil)
	}

	libPath := argv[0]
	jvmArgc, err := strconv.Atoi(argv[1])
	if err != nil || jvmArgc < 0 {
		return newLauncherError(ErrBadDirectiveSyntax, "invalid JVM option count", err)
	}
	if 2+jvmArgc >= len(argv) {
		return newLauncherError(ErrArgcOutOfBounds, "JVM directive option count exceeds remaining arguments", nil)
	}
	jvmArgs := argv[2 : 2+jvmArgc]
	mainClass := argv[2+jvmArgc]
	mainArgs := argv[3+jvmArgc:]

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.vm == nil {
		j.log.Infof("loading libjvm", "path", libPath)
		vm, lib, err := j.backend.CreateJavaVM(libPath, jvmArgs)
		if err != nil {
			return newLauncherError(ErrCreateJavaVM, "JNI_CreateJavaVM", err)
		}
		j.vm = vm
		j.library = lib
		j.log.Infof("JVM created and cached for reuse", "library", lib.Path())
	} else {
		if len(jvmArgs) > 0 {
			j.log.Warnf("JVM options ignored when reusing cached JVM instance")
		}
		if err := j.backend.AttachCurrentThread(j.vm); err != nil {
			return newLauncherError(ErrCreateJavaVM, "AttachCurrentThread", err)
		}
	}

	invokeErr := j.backend.InvokeMain(j.vm, mainClass, mainArgs)

	if err := j.backend.DetachCurrentThread(j.vm); err != nil {
		j.log.Errorf("could not detach current thread from JVM", "error", err)
	}

	if invokeErr != nil {
		return invokeErr
	}
	return nil
}

// Cleanup destroys the cached JVM, if one was created. Called once after
// all directives have been processed.
func (j *JVMRuntime) Cleanup() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.vm == nil {
		return
	}
	j.log.Debugf("destroying cached JVM", "library", j.library.Path())
	if err := j.backend.DestroyJavaVM(j.vm); err != nil {
		j.log.Errorf("error destroying JVM", "error", err)
	}
	j.vm = nil
	j.library = nil
}
