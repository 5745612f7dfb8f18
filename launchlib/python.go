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
	"runtime"
	"sync"
	"unsafe"
)

// pyBytesMainFunc mirrors CPython's `int Py_BytesMain(int argc, char **argv)`
// entry point, registered dynamically via purego.RegisterLibFunc the way
// adamkeys-serpent registers its flat Python C API functions. argv is a
// uintptr rather than a Go slice/pointer type because purego's reflection
// marshaling only handles scalars; anything shaped like a C pointer-to-
// pointer has to be built and passed manually, matched on the call site.
type pyBytesMainFunc func(argc int32, argv uintptr) int32

// pythonBackend resolves and invokes Py_BytesMain; real use goes through
// purego (pythonPuregoBackend below), tests substitute a fake.
type pythonBackend interface {
	Load(libPath string) (*SharedLibrary, pyBytesMainFunc, error)
	Call(fn pyBytesMainFunc, argv []string) int32
}

// PythonRuntime implements Runtime for the PYTHON directive. Unlike the
// JVM, CPython exposes Py_BytesMain as a single flat C function, so this
// runtime is implemented with purego directly rather than cgo: no JNI-style
// vtable to dereference, just one symbol to resolve and call.
type PythonRuntime struct {
	log     *Logger
	backend pythonBackend

	mu      sync.Mutex
	library *SharedLibrary
}

// NewPythonRuntime constructs a PythonRuntime. The library is opened lazily
// on the first PYTHON directive, mirroring launch_python in
// original_source/src/c/python.h.
func NewPythonRuntime(log *Logger) *PythonRuntime {
	return &PythonRuntime{log: log.Named("PYTHON"), backend: pythonPuregoBackend{}}
}

// Invoke parses argv as:
//
//	[0]     path to libpython
//	[1:]    argv for Py_BytesMain, including its own argv[0] (spec §4.5:
//	        the launcher path or the discovered Python executable path,
//	        chosen by the configurator, not the libpython path itself)
//
// CPython does not expose a supported way to run a second independent
// "main" invocation after the first has returned (Py_BytesMain finalizes
// the interpreter before returning), so unlike the JVM this runtime does
// not cache across directives: each PYTHON directive loads its own
// library handle. This matches the original C launcher, which also never
// caches a Python library the way it caches cached_jvm.
func (p *PythonRuntime) Invoke(argv []string) error {
	if len(argv) < 1 {
		return newLauncherError(ErrArgcOutOfBounds, "PYTHON directive requires a library path", nil)
	}
	libPath := argv[0]
	mainArgv := argv[1:]

	p.log.Infof("loading libpython", "path", libPath)
	lib, main, err := p.backend.Load(libPath)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.library = lib
	p.mu.Unlock()

	result := p.backend.Call(main, mainArgv)
	if result != 0 {
		// Py_BytesMain's return value is CPython's own process exit code
		// (e.g. an uncaught SystemExit(n) or a traceback's conventional 1),
		// not a launcher failure mode; spec §4.5 has the launcher surface
		// it unchanged rather than collapsing it to a generic crash code.
		return newLauncherError(int(result), "Python runtime exited nonzero", nil)
	}

	p.log.Debugf("Python runtime returned; libpython left loaded", "library", lib.Path())
	return nil
}

// Cleanup is a no-op: each Invoke already closes/abandons its own library
// handle, there being nothing cached across directives to release here.
// It still satisfies the Runtime interface so the registry can treat
// every runtime uniformly.
func (p *PythonRuntime) Cleanup() {}

// pythonPuregoBackend is the real pythonBackend, calling into libpython
// through purego.
type pythonPuregoBackend struct{}

func (pythonPuregoBackend) Load(libPath string) (*SharedLibrary, pyBytesMainFunc, error) {
	lib, err := LibOpen(libPath)
	if err != nil {
		return nil, nil, err
	}
	var main pyBytesMainFunc
	if err := lib.RegisterFunc(&main, "Py_BytesMain"); err != nil {
		lib.Close()
		return nil, nil, err
	}
	return lib, main, nil
}

// Call builds a C-style argv (array of NUL-terminated byte strings, itself
// NUL-pointer-terminated) from argv and calls fn with it. This hand-marshals
// the pointer array because purego's RegisterLibFunc only auto-converts
// scalar and string parameters, not arrays of strings.
func (pythonPuregoBackend) Call(fn pyBytesMainFunc, argv []string) int32 {
	cstrs := make([][]byte, len(argv))
	for i, a := range argv {
		cstrs[i] = append([]byte(a), 0)
	}

	ptrs := make([]uintptr, len(cstrs)+1)
	for i, s := range cstrs {
		ptrs[i] = uintptr(unsafe.Pointer(&s[0]))
	}
	ptrs[len(cstrs)] = 0

	result := fn(int32(len(argv)), uintptr(unsafe.Pointer(&ptrs[0])))

	// Keep the backing byte slices (and the pointer array referencing
	// them) alive until after the call returns.
	runtime.KeepAlive(cstrs)
	runtime.KeepAlive(ptrs)
	return result
}
