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

import "testing"

func TestParseDirectiveStreamSimple(t *testing.T) {
	lines := []string{"SETCWD", "1", "/tmp", "INIT_THREADS", "0"}
	directives, trailing, err := ParseDirectiveStream(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trailing != 0 {
		t.Fatalf("unexpected trailing count: %d", trailing)
	}
	if len(directives) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(directives))
	}
	if directives[0].Name != DirectiveSetCwd || len(directives[0].Argv) != 1 || directives[0].Argv[0] != "/tmp" {
		t.Fatalf("unexpected first directive: %+v", directives[0])
	}
	if directives[1].Name != DirectiveInitThreads || len(directives[1].Argv) != 0 {
		t.Fatalf("unexpected second directive: %+v", directives[1])
	}
}

func TestParseDirectiveStreamAbortDiscardsTrailingLines(t *testing.T) {
	lines := []string{"SETCWD", "1", "/tmp", "ABORT", "JVM", "3", "junk", "junk", "junk"}
	directives, trailing, err := ParseDirectiveStream(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("expected directives before ABORT to survive, got %d", len(directives))
	}
	if trailing != 5 {
		t.Fatalf("expected 5 trailing lines discarded, got %d", trailing)
	}
}

func TestParseDirectiveStreamBareAbort(t *testing.T) {
	directives, trailing, err := ParseDirectiveStream([]string{"ABORT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(directives) != 0 || trailing != 0 {
		t.Fatalf("expected no directives and no trailing lines, got %d/%d", len(directives), trailing)
	}
}

func TestParseDirectiveStreamRejectsTrailingNameWithNoCount(t *testing.T) {
	_, _, err := ParseDirectiveStream([]string{"SETCWD", "1", "/tmp", "JVM"})
	if err == nil {
		t.Fatal("expected error for directive name with no following argument count")
	}
}

func TestParseDirectiveStreamRejectsNonNumericCount(t *testing.T) {
	_, _, err := ParseDirectiveStream([]string{"SETCWD", "not-a-number", "/tmp"})
	if err == nil {
		t.Fatal("expected error for non-numeric argument count")
	}
}

func TestParseDirectiveStreamRejectsArgcOutOfBounds(t *testing.T) {
	_, _, err := ParseDirectiveStream([]string{"SETCWD", "5", "/tmp"})
	if err == nil {
		t.Fatal("expected error when declared argc exceeds remaining lines")
	}
	var lerr *LauncherError
	if !asLauncherError(err, &lerr) || lerr.Code != ErrArgcOutOfBounds {
		t.Fatalf("expected ErrArgcOutOfBounds, got %v", err)
	}
}

func TestParseDirectiveStreamRejectsNegativeCount(t *testing.T) {
	_, _, err := ParseDirectiveStream([]string{"SETCWD", "-1", "/tmp"})
	if err == nil {
		t.Fatal("expected error for negative argument count")
	}
}
