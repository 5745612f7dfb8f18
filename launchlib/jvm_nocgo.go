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

//go:build !cgo

package launchlib

// cgoJVMBackend without cgo available: the JNI vtable calls in jvm_cgo.go
// require a C compiler, so a CGO_ENABLED=0 build still links (this repo's
// own tests and the PYTHON/SETCWD/etc. directives don't need a JVM) but
// any JVM directive fails loudly instead of the package failing to
// compile at all.
type cgoJVMBackend struct{}

func (cgoJVMBackend) CreateJavaVM(libPath string, vmArgs []string) (jvmHandle, *SharedLibrary, error) {
	return nil, nil, newLauncherError(ErrMissingFunction, "JVM support requires a cgo-enabled build", nil)
}

func (cgoJVMBackend) AttachCurrentThread(vm jvmHandle) error {
	return newLauncherError(ErrMissingFunction, "JVM support requires a cgo-enabled build", nil)
}

func (cgoJVMBackend) InvokeMain(vm jvmHandle, mainClass string, mainArgs []string) error {
	return newLauncherError(ErrMissingFunction, "JVM support requires a cgo-enabled build", nil)
}

func (cgoJVMBackend) DetachCurrentThread(vm jvmHandle) error { return nil }

func (cgoJVMBackend) DestroyJavaVM(vm jvmHandle) error { return nil }
