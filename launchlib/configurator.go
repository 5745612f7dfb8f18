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
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// ConfiguratorSearchDirs lists the places to look for the jaunch
// configurator executable, relative to the launcher's own directory.
// This is the literal list from upstream Jaunch's JAUNCH_SEARCH_PATHS in
// jaunch.c, which in turn is kept in sync with Jaunch.kt's configDirs.
var ConfiguratorSearchDirs = []string{
	"jaunch",
	".jaunch",
	filepath.Join("config", "jaunch"),
	filepath.Join(".config", "jaunch"),
	filepath.Join("Contents", "MacOS"),
}

// FindConfigurator looks in each of searchDirs (resolved relative to the
// directory containing exePath) for, in order: the platform-and-arch
// specific configurator name, the fallback-suffix name (non-empty only
// for combinations like windows/arm64 that can run an x64 configurator
// under emulation), then the plain name. It returns the first path that
// exists on disk, or an ErrCommandPath LauncherError if none do.
func FindConfigurator(exePath string, searchDirs []string, platformName platformNaming, exists func(string) bool) (string, error) {
	baseDir := filepath.Dir(exePath)

	candidates := func(dir string) []string {
		names := []string{
			"jaunch-" + platformName.OSName + "-" + platformName.Arch + platformName.ExeSuffix,
		}
		if platformName.FallbackSuffix != "" {
			names = append(names, "jaunch-"+platformName.FallbackSuffix+platformName.ExeSuffix)
		}
		names = append(names, "jaunch"+platformName.ExeSuffix)
		paths := make([]string, len(names))
		for i, n := range names {
			paths[i] = filepath.Join(baseDir, dir, n)
		}
		return paths
	}

	for _, dir := range searchDirs {
		for _, path := range candidates(dir) {
			if exists(path) {
				return path, nil
			}
		}
	}
	return "", newLauncherError(ErrCommandPath, "failed to locate the jaunch configurator program", nil)
}

// WriteStdinFrame encodes argv using the N-prefixed line protocol
// (spec §4.3): a decimal line count, followed by one argument per line.
// Splitting it out from RunConfigurator makes the framing logic directly
// testable without spawning a process.
func WriteStdinFrame(w io.Writer, argv []string) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n", len(argv)); err != nil {
		return newLauncherError(ErrPipe, "writing argument count", err)
	}
	for _, a := range argv {
		if _, err := fmt.Fprintf(bw, "%s\n", a); err != nil {
			return newLauncherError(ErrPipe, "writing argument line", err)
		}
	}
	return bw.Flush()
}

// SplitDirectiveLines splits the configurator's stdout into lines,
// accepting either bare \n (POSIX) or \r\n (Windows) terminators.
func SplitDirectiveLines(output string) []string {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	output = strings.TrimSuffix(output, "\n")
	if output == "" {
		return nil
	}
	return strings.Split(output, "\n")
}

// RunConfigurator spawns the configurator at path with the single literal
// argument "-" (spec §4.3: this sidesteps shell-quoting entirely, since
// the real argument list travels over stdin instead of argv), writes
// args using the N-prefixed wire format, closes stdin, and collects the
// line-split stdout once the process exits. The child's stderr is wired
// directly to stderr: os/exec already runs that copy on a goroutine
// whenever Stderr is set to something other than an *os.File, so no
// dedicated reader thread is needed the way the original C code needs
// one on Windows.
func RunConfigurator(ctx context.Context, path string, args []string, stderr io.Writer) ([]string, error) {
	cmd := exec.CommandContext(ctx, path, "-")
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, newLauncherError(ErrPipe, "opening configurator stdin", err)
	}

	var stdout strings.Builder
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return nil, newLauncherError(ErrFork, "starting configurator process", err)
	}

	writeErr := WriteStdinFrame(stdin, args)
	closeErr := stdin.Close()

	waitErr := cmd.Wait()

	if writeErr != nil {
		return nil, writeErr
	}
	if closeErr != nil {
		return nil, newLauncherError(ErrPipe, "closing configurator stdin", closeErr)
	}
	if waitErr != nil {
		return nil, newLauncherError(ErrWaitpid, "configurator process failed", waitErr)
	}

	return SplitDirectiveLines(stdout.String()), nil
}

// TargetArchArgument returns the internal "--jaunch-target-arch=<arch>"
// option the launcher prepends to argv before forwarding it to the
// configurator (spec §4.4).
func TargetArchArgument(arch string) string {
	return "--jaunch-target-arch=" + arch
}
