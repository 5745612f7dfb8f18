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
	"path/filepath"

	"golang.org/x/sys/windows"
)

// prepareDllSearchPath adds the directory containing path to the DLL
// search path before it is loaded (spec §4.1): libjvm.dll and
// python3xx.dll both pull in transitive dependencies (the JDK/CRT DLLs
// sitting next to them) that the default search order would otherwise
// miss once jaunch's own executable directory is searched first.
func prepareDllSearchPath(path string) {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return
	}
	_ = windows.SetDllDirectory(dir)
}
