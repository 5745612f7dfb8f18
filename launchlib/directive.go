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
)

// DirectiveName is the closed set of directive tags a configurator may emit.
type DirectiveName string

const (
	DirectiveJVM         DirectiveName = "JVM"
	DirectivePython      DirectiveName = "PYTHON"
	DirectiveSetCwd      DirectiveName = "SETCWD"
	DirectiveInitThreads DirectiveName = "INIT_THREADS"
	DirectiveRunloop     DirectiveName = "RUNLOOP"
	DirectiveError       DirectiveName = "ERROR"
	DirectiveAbort       DirectiveName = "ABORT"
)

// Directive is the (name, argc, argv) triple described in spec §3. Argc is
// implicit in len(Argv); we don't carry it separately the way the C struct
// does, since Go slices already know their own length.
type Directive struct {
	Name DirectiveName
	Argv []string
}

// ParseDirectiveStream consumes the configurator's newline-delimited output
// (already split into lines by the caller) and returns the ordered sequence
// of directives. It is a pure function with no I/O so it can be fuzzed
// directly against spec §8 properties 1 and 2.
//
// Framing rules (spec §4.4):
//   - ABORT may appear with no argument block; everything after it is
//     discarded (with a caller-visible note via the returned trailing count).
//   - Any other directive must be followed by a decimal argument count and
//     that many argument lines.
//   - A directive name as the final line, with no count, is invalid.
func ParseDirectiveStream(lines []string) (directives []Directive, trailingDiscarded int, err error) {
	index := 0
	for index < len(lines) {
		name := DirectiveName(lines[index])

		if name == DirectiveAbort {
			trailingDiscarded = len(lines) - index - 1
			return directives, trailingDiscarded, nil
		}

		if index == len(lines)-1 {
			return directives, 0, newLauncherError(ErrBadDirectiveSyntax,
				"invalid trailing directive: "+lines[index], nil)
		}

		k, convErr := strconv.Atoi(lines[index+1])
		if convErr != nil || k < 0 {
			return directives, 0, newLauncherError(ErrBadDirectiveSyntax,
				"malformed argument count for directive "+string(name), convErr)
		}

		remaining := len(lines) - index - 2
		if k > remaining {
			return directives, 0, newLauncherError(ErrArgcOutOfBounds,
				"directive "+string(name)+" declares more arguments than remain", nil)
		}

		argv := append([]string(nil), lines[index+2:index+2+k]...)
		directives = append(directives, Directive{Name: name, Argv: argv})
		index += 2 + k
	}
	return directives, 0, nil
}