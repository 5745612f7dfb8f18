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
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsPlatform has no GUI runloop requirement the way macOS does:
// Launch always runs fn directly. Its Setup/Teardown instead handle
// console attachment, matching the original's win32.h responsibilities.
type windowsPlatform struct{}

func NewPlatform() Platform {
	return windowsPlatform{}
}

// Setup attaches to the parent console when launched from one (so stdout/
// stderr are visible rather than swallowed, the classic Windows GUI-
// subsystem problem), then detects whether the parent process is a bash
// shell (MSYS2/Git Bash/WSL interop) so the standard streams are left
// alone in that case instead of being reopened, matching the original's
// documented behavior of skipping stream reopening under bash parents.
func (windowsPlatform) Setup(argv []string) error {
	if err := windows.AttachConsole(windows.ATTACH_PARENT_PROCESS); err != nil {
		// No parent console to attach to (e.g. launched from Explorer);
		// this is expected and not an error condition.
		return nil
	}

	if isBashParent() {
		return nil
	}

	for _, std := range []struct {
		name   string
		handle **os.File
	}{
		{"CONOUT$", &os.Stdout},
		{"CONOUT$", &os.Stderr},
		{"CONIN$", &os.Stdin},
	} {
		f, err := os.OpenFile(std.name, os.O_RDWR, 0)
		if err == nil {
			*std.handle = f
		}
	}
	return nil
}

func (windowsPlatform) Teardown() {
	windows.FreeConsole()
}

func (windowsPlatform) Launch(ctx *ThreadContext, fn func() error) error {
	return fn()
}

func (windowsPlatform) RunloopConfig(name DirectiveName) string { return "" }

func (windowsPlatform) RunloopStop() {}

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

// InitThreads: Windows has no X11-style one-time threading prerequisite
// for GUI toolkits (spec §4.1 describes this requirement for Linux
// only), so this is a no-op that always succeeds.
func (windowsPlatform) InitThreads() error { return nil }

// ShowAlert presents a Win32 MessageBox, used by the ERROR directive and
// the crash handler unless --headless was given.
func (windowsPlatform) ShowAlert(title, message string) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	_, _ = messageBoxW(0, messagePtr, titlePtr, mbIconError|mbOK)
}

const (
	mbOK        = 0x00000000
	mbIconError = 0x00000010
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMessageBoxW = user32.NewProc("MessageBoxW")
)

func messageBoxW(hwnd uintptr, text, caption *uint16, flags uint32) (int32, error) {
	ret, _, err := procMessageBoxW.Call(
		hwnd,
		uintptr(unsafe.Pointer(text)),
		uintptr(unsafe.Pointer(caption)),
		uintptr(flags),
	)
	if ret == 0 {
		return 0, err
	}
	return int32(ret), nil
}

// isBashParent walks the process list via CreateToolhelp32Snapshot to
// find the current process's parent and checks whether its image name
// looks like a bash shell (bash.exe, sh.exe), which on Windows usually
// means an MSYS2/Git-Bash/WSL-interop environment that already provides
// working standard streams.
func isBashParent() bool {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snapshot, &entry); err != nil {
		return false
	}

	pid := windows.GetCurrentProcessId()
	var parentPID uint32
	for {
		if entry.ProcessID == pid {
			parentPID = entry.ParentProcessID
			break
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			break
		}
	}
	if parentPID == 0 {
		return false
	}

	entry = windows.ProcessEntry32{Size: uint32(unsafe.Sizeof(entry))}
	if err := windows.Process32First(snapshot, &entry); err != nil {
		return false
	}
	for {
		if entry.ProcessID == parentPID {
			name := strings.ToLower(windows.UTF16ToString(entry.ExeFile[:]))
			name = filepath.Base(name)
			return name == "bash.exe" || name == "sh.exe"
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			return false
		}
	}
}
