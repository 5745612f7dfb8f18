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
	"errors"
	"testing"
)

// fakeJVMBackend lets JVMRuntime.Invoke be exercised without a real JVM.
type fakeJVMBackend struct {
	createCalls    int
	attachCalls    int
	invokedClass   string
	invokedArgs    []string
	destroyed      bool
	createErr      error
	invokeErr      error
}

func (f *fakeJVMBackend) CreateJavaVM(libPath string, vmArgs []string) (jvmHandle, *SharedLibrary, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	return "fake-vm", nil, nil
}

func (f *fakeJVMBackend) AttachCurrentThread(vm jvmHandle) error {
	f.attachCalls++
	return nil
}

func (f *fakeJVMBackend) InvokeMain(vm jvmHandle, mainClass string, mainArgs []string) error {
	f.invokedClass = mainClass
	f.invokedArgs = mainArgs
	return f.invokeErr
}

func (f *fakeJVMBackend) DetachCurrentThread(vm jvmHandle) error { return nil }

func (f *fakeJVMBackend) DestroyJavaVM(vm jvmHandle) error {
	f.destroyed = true
	return nil
}

func newTestJVMRuntime(backend jvmBackend) *JVMRuntime {
	return &JVMRuntime{log: NewLogger(nil, VerbosityQuiet, "test"), backend: backend}
}

func TestJVMRuntimeInvokeCreatesThenReuses(t *testing.T) {
	backend := &fakeJVMBackend{}
	rt := newTestJVMRuntime(backend)

	argv := []string{"/fake/libjvm.so", "1", "-Xmx64m", "com/example/Main", "a", "b"}
	if err := rt.Invoke(argv); err != nil {
		t.Fatalf("first Invoke: %v", err)
	}
	if backend.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", backend.createCalls)
	}
	if backend.invokedClass != "com/example/Main" {
		t.Fatalf("unexpected class: %s", backend.invokedClass)
	}
	if len(backend.invokedArgs) != 2 || backend.invokedArgs[0] != "a" {
		t.Fatalf("unexpected main args: %v", backend.invokedArgs)
	}

	argv2 := []string{"/fake/libjvm.so", "0", "com/example/Other"}
	if err := rt.Invoke(argv2); err != nil {
		t.Fatalf("second Invoke: %v", err)
	}
	if backend.createCalls != 1 {
		t.Fatalf("expected JVM reuse, but create was called again: %d", backend.createCalls)
	}
	if backend.attachCalls != 1 {
		t.Fatalf("expected exactly one attach on reuse, got %d", backend.attachCalls)
	}
}

func TestJVMRuntimeInvokeRejectsShortArgv(t *testing.T) {
	rt := newTestJVMRuntime(&fakeJVMBackend{})
	if err := rt.Invoke([]string{"only-one-arg"}); err == nil {
		t.Fatal("expected error for too-short argv")
	}
}

func TestJVMRuntimeInvokeRejectsBadOptionCount(t *testing.T) {
	rt := newTestJVMRuntime(&fakeJVMBackend{})
	err := rt.Invoke([]string{"/fake/libjvm.so", "not-a-number", "com/example/Main"})
	if err == nil {
		t.Fatal("expected error for non-numeric option count")
	}
}

func TestJVMRuntimeInvokePropagatesCreateError(t *testing.T) {
	backend := &fakeJVMBackend{createErr: errors.New("boom")}
	rt := newTestJVMRuntime(backend)
	err := rt.Invoke([]string{"/fake/libjvm.so", "0", "com/example/Main"})
	if err == nil {
		t.Fatal("expected propagated create error")
	}
}

func TestJVMRuntimeCleanupDestroysCachedVM(t *testing.T) {
	backend := &fakeJVMBackend{}
	rt := newTestJVMRuntime(backend)
	if err := rt.Invoke([]string{"/fake/libjvm.so", "0", "com/example/Main"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	rt.Cleanup()
	if !backend.destroyed {
		t.Fatal("expected DestroyJavaVM to be called")
	}

	// A second cleanup with no cached VM must be a no-op, not a panic.
	rt.Cleanup()
}
