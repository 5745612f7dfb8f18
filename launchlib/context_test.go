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
	"testing"
	"time"
)

func TestThreadContextRequestMainExecutionRoundTrip(t *testing.T) {
	tc := NewThreadContext()
	done := make(chan struct{})

	go func() {
		name, argv, ok := tc.WaitForWork()
		if !ok {
			t.Error("expected work, got completion signal")
			return
		}
		if name != "SETCWD" || len(argv) != 1 || argv[0] != "/tmp" {
			t.Errorf("unexpected directive handed to main goroutine: %s %v", name, argv)
		}
		tc.CompleteMainExecution(0)
		close(done)
	}()

	result := tc.RequestMainExecution("SETCWD", []string{"/tmp"})
	if result != 0 {
		t.Fatalf("expected result 0, got %d", result)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("main goroutine never observed completion")
	}

	if state := tc.State(); state != StateWaiting {
		t.Fatalf("expected StateWaiting after completion, got %v", state)
	}
}

func TestThreadContextCompleteWakesMainLoop(t *testing.T) {
	tc := NewThreadContext()
	results := make(chan bool, 1)

	go func() {
		_, _, ok := tc.WaitForWork()
		results <- ok
	}()

	tc.Complete(3)

	select {
	case ok := <-results:
		if ok {
			t.Fatal("expected WaitForWork to report completion (ok=false)")
		}
	case <-time.After(time.Second):
		t.Fatal("main goroutine never woke on Complete")
	}

	if tc.ExitCode() != 3 {
		t.Fatalf("expected exit code 3, got %d", tc.ExitCode())
	}
	if tc.MainThreadAvailable() {
		t.Fatal("expected main thread unavailable after Complete")
	}
}

func TestThreadContextEnterRunloopMarksMainUnavailable(t *testing.T) {
	tc := NewThreadContext()
	if !tc.MainThreadAvailable() {
		t.Fatal("expected main thread available initially")
	}
	tc.EnterRunloop("macos-nsapp")
	if tc.MainThreadAvailable() {
		t.Fatal("expected main thread unavailable once parked in a runloop")
	}
	if mode := tc.RunloopMode(); mode != "macos-nsapp" {
		t.Fatalf("unexpected runloop mode: %s", mode)
	}
	if state := tc.State(); state != StateRunloop {
		t.Fatalf("expected StateRunloop, got %v", state)
	}
}

func TestThreadContextSetRunloopModeDoesNotChangeState(t *testing.T) {
	tc := NewThreadContext()
	tc.SetRunloopMode("headless")
	if state := tc.State(); state != StateWaiting {
		t.Fatalf("SetRunloopMode should not itself transition state, got %v", state)
	}
	if mode := tc.RunloopMode(); mode != "headless" {
		t.Fatalf("unexpected runloop mode: %s", mode)
	}
}

// TestThreadContextEarlyCompletionUnblocksWorker exercises the "park"
// path: the main goroutine picks up a RUNLOOP directive and, instead of
// calling CompleteMainExecution, parks by calling EnterRunloop. The
// worker's outstanding RequestMainExecution call must still unblock
// (reporting Success), since the main goroutine is never coming back to
// report a result for that directive.
func TestThreadContextEarlyCompletionUnblocksWorker(t *testing.T) {
	tc := NewThreadContext()
	done := make(chan struct{})

	go func() {
		name, _, ok := tc.WaitForWork()
		if !ok || name != DirectiveRunloop {
			t.Errorf("unexpected directive handed to main goroutine: %s ok=%v", name, ok)
			return
		}
		tc.EnterRunloop("park")
		close(done)
	}()

	result := tc.RequestMainExecution(DirectiveRunloop, []string{"park"})
	if result != Success {
		t.Fatalf("expected early completion to report Success, got %d", result)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("main goroutine never parked")
	}

	if tc.MainThreadAvailable() {
		t.Fatal("expected main thread unavailable after early completion")
	}
}
