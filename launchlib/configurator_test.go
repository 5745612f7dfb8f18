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
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestTargetArchArgument(t *testing.T) {
	if got := TargetArchArgument("amd64"); got != "--jaunch-target-arch=amd64" {
		t.Fatalf("unexpected argument: %q", got)
	}
}

func TestSplitDirectiveLinesHandlesBothTerminators(t *testing.T) {
	cases := map[string][]string{
		"JVM\n1\n/libjvm.so\n":   {"JVM", "1", "/libjvm.so"},
		"JVM\r\n1\r\n/libjvm.so": {"JVM", "1", "/libjvm.so"},
		"":                       nil,
		"ABORT":                  {"ABORT"},
	}
	for input, want := range cases {
		got := SplitDirectiveLines(input)
		if len(got) != len(want) {
			t.Fatalf("SplitDirectiveLines(%q) = %v, want %v", input, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("SplitDirectiveLines(%q)[%d] = %q, want %q", input, i, got[i], want[i])
			}
		}
	}
}

func TestWriteStdinFrameEncodesCountThenArgs(t *testing.T) {
	var buf strings.Builder
	if err := WriteStdinFrame(&buf, []string{"--flag", "value"}); err != nil {
		t.Fatalf("WriteStdinFrame returned error: %v", err)
	}
	want := "2\n--flag\nvalue\n"
	if buf.String() != want {
		t.Fatalf("WriteStdinFrame wrote %q, want %q", buf.String(), want)
	}
}

func TestWriteStdinFrameEmptyArgv(t *testing.T) {
	var buf strings.Builder
	if err := WriteStdinFrame(&buf, nil); err != nil {
		t.Fatalf("WriteStdinFrame returned error: %v", err)
	}
	if buf.String() != "0\n" {
		t.Fatalf("WriteStdinFrame wrote %q, want %q", buf.String(), "0\n")
	}
}

func TestFindConfiguratorPrefersPlatformSpecificName(t *testing.T) {
	naming := platformNaming{OSName: "linux", Arch: "amd64", ExeSuffix: ""}
	existing := map[string]bool{
		filepath.Join("/app", "jaunch", "jaunch-linux-amd64"): true,
		filepath.Join("/app", "jaunch", "jaunch"):             true,
	}
	exists := func(p string) bool { return existing[p] }

	got, err := FindConfigurator(filepath.Join("/app", "launcher"), ConfiguratorSearchDirs, naming, exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/app", "jaunch", "jaunch-linux-amd64")
	if got != want {
		t.Fatalf("FindConfigurator() = %q, want %q", got, want)
	}
}

func TestFindConfiguratorFallsBackToPlainName(t *testing.T) {
	naming := platformNaming{OSName: "linux", Arch: "amd64", ExeSuffix: ""}
	existing := map[string]bool{
		filepath.Join("/app", ".jaunch", "jaunch"): true,
	}
	exists := func(p string) bool { return existing[p] }

	got, err := FindConfigurator(filepath.Join("/app", "launcher"), ConfiguratorSearchDirs, naming, exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/app", ".jaunch", "jaunch")
	if got != want {
		t.Fatalf("FindConfigurator() = %q, want %q", got, want)
	}
}

func TestFindConfiguratorUsesFallbackSuffix(t *testing.T) {
	naming := platformNaming{OSName: "windows", Arch: "arm64", ExeSuffix: ".exe", FallbackSuffix: "windows-amd64"}
	existing := map[string]bool{
		filepath.Join("/app", "jaunch", "jaunch-windows-amd64.exe"): true,
	}
	exists := func(p string) bool { return existing[p] }

	got, err := FindConfigurator(filepath.Join("/app", "launcher.exe"), ConfiguratorSearchDirs, naming, exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join("/app", "jaunch", "jaunch-windows-amd64.exe")
	if got != want {
		t.Fatalf("FindConfigurator() = %q, want %q", got, want)
	}
}

func TestFindConfiguratorReturnsErrCommandPathWhenMissing(t *testing.T) {
	naming := platformNaming{OSName: "linux", Arch: "amd64", ExeSuffix: ""}
	_, err := FindConfigurator(filepath.Join("/app", "launcher"), ConfiguratorSearchDirs, naming, func(string) bool { return false })

	var launcherErr *LauncherError
	if !asLauncherError(err, &launcherErr) {
		t.Fatalf("expected a *LauncherError, got %v", err)
	}
	if launcherErr.Code != ErrCommandPath {
		t.Fatalf("expected ErrCommandPath, got %d", launcherErr.Code)
	}
}

// TestRunConfiguratorRoundTrip spawns a trivial shell script that echoes a
// canned directive stream, exercising RunConfigurator's stdin-framing and
// stdout-collection against a real child process rather than a fake.
func TestRunConfiguratorRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-configurator.sh")
	contents := "#!/bin/sh\ncat >/dev/null\nprintf 'JVM\\n1\\n/libjvm.so\\n'\n"
	if err := os.WriteFile(script, []byte(contents), 0o755); err != nil {
		t.Fatalf("writing fake configurator: %v", err)
	}

	lines, err := RunConfigurator(context.Background(), script, []string{TargetArchArgument("amd64")}, os.Stderr)
	if err != nil {
		t.Fatalf("RunConfigurator returned error: %v", err)
	}
	want := []string{"JVM", "1", "/libjvm.so"}
	if len(lines) != len(want) {
		t.Fatalf("RunConfigurator() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunConfiguratorPropagatesNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "failing-configurator.sh")
	contents := "#!/bin/sh\ncat >/dev/null\nexit 3\n"
	if err := os.WriteFile(script, []byte(contents), 0o755); err != nil {
		t.Fatalf("writing fake configurator: %v", err)
	}

	_, err := RunConfigurator(context.Background(), script, nil, os.Stderr)
	var launcherErr *LauncherError
	if !asLauncherError(err, &launcherErr) {
		t.Fatalf("expected a *LauncherError, got %v", err)
	}
	if launcherErr.Code != ErrWaitpid {
		t.Fatalf("expected ErrWaitpid, got %d", launcherErr.Code)
	}
}
