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

// prepareDllSearchPath is a no-op outside Windows: dlopen on Linux/macOS
// already resolves an absolute library path's transitive dependencies via
// the system's own rpath/LD_LIBRARY_PATH/@rpath rules, none of which this
// launcher needs to adjust (spec §4.1 describes the DLL search path fix
// as Windows-specific).
func prepareDllSearchPath(path string) {}
