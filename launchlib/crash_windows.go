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

//go:build windows

package launchlib

// InstallCrashHandler is a no-op on Windows: there is no POSIX SIGABRT
// to observe, and the runtimes this launcher embeds report fatal errors
// through other channels (a JVM fatal error writes an hs_err log and
// calls TerminateProcess directly; CPython's Py_FatalError does the
// same). A Windows-specific vectored exception handler would be the
// faithful analogue but needs cgo or raw syscall plumbing this port does
// not currently bind (see DESIGN.md).
func InstallCrashHandler(log *Logger, platform Platform, headless bool) {}
