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
	"fmt"

	"github.com/ebitengine/purego"
)

// SharedLibrary is an opened dynamic library handle, wrapping purego's
// Dlopen/Dlsym/Dlclose the way the original C code wraps dlopen/dlsym/
// dlclose behind lib_open/lib_sym/lib_close/lib_error in posix.h and
// win32.h. purego gives us the same three operations without cgo, on
// every platform Jaunch supports, so a single implementation covers
// Linux, macOS and Windows instead of three per-platform C headers.
type SharedLibrary struct {
	path   string
	handle uintptr
}

// LibOpen loads a shared library by path, analogous to lib_open(). RTLD_NOW
// resolves all symbols eagerly, matching the original's posix.h flags so
// a missing symbol in libjvm/libpython is caught here rather than lazily
// during a later call.
func LibOpen(path string) (*SharedLibrary, error) {
	prepareDllSearchPath(path)
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, newLauncherError(ErrDlopen, "dlopen "+path, err)
	}
	return &SharedLibrary{path: path, handle: handle}, nil
}

// Sym resolves a symbol's address, analogous to lib_sym(). Callers pass
// the result to purego.RegisterFunc/RegisterLibFunc or purego.SyscallN.
func (l *SharedLibrary) Sym(name string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, newLauncherError(ErrDlsym, fmt.Sprintf("dlsym %s in %s", name, l.path), err)
	}
	return addr, nil
}

// RegisterFunc resolves name in the library and wires it to fn, which
// must be a pointer to a function variable, per purego.RegisterLibFunc's
// contract. It is the Go analogue of the original's repeated
// `lib_sym(library, "Name")` plus manual function-pointer cast.
func (l *SharedLibrary) RegisterFunc(fn interface{}, name string) error {
	if _, err := l.Sym(name); err != nil {
		return err
	}
	purego.RegisterLibFunc(fn, l.handle, name)
	return nil
}

// Close releases the library handle. Unlike the original C code, JVM and
// Python runtime launchers in this repo never actually call Close on a
// successfully loaded runtime library: neither runtime
// supports being safely unloaded once it has executed user code, so
// calling dlclose on it is well known to risk crashing on exit. Close
// is still provided, and is used on the error paths where a library was
// opened but a required symbol turned out to be missing.
func (l *SharedLibrary) Close() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	if err := purego.Dlclose(l.handle); err != nil {
		return newLauncherError(ErrDlsym, "dlclose "+l.path, err)
	}
	l.handle = 0
	return nil
}

// Path returns the filesystem path the library was opened from, or ""
// for a nil handle (tests that fake a backend without a real library).
func (l *SharedLibrary) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
