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
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWarnAlwaysEmits(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityQuiet, "JAUNCH")
	logger.Warnf("something bad")
	if !strings.Contains(buf.String(), "something bad") {
		t.Errorf("expected warning to be emitted at quiet verbosity, got %q", buf.String())
	}
}

func TestLoggerErrorAlwaysEmits(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityQuiet, "JAUNCH")
	logger.Errorf("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error to be emitted at quiet verbosity, got %q", buf.String())
	}
}

func TestLoggerInfoSuppressedAtQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityQuiet, "JAUNCH")
	logger.Infof("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("expected info to be suppressed at quiet verbosity, got %q", buf.String())
	}
}

func TestLoggerInfoEmitsWithOneDebugFlag(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityInfo, "JAUNCH")
	logger.Infof("one debug flag")
	if !strings.Contains(buf.String(), "one debug flag") {
		t.Errorf("expected info to be emitted at VerbosityInfo, got %q", buf.String())
	}
}

func TestLoggerDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityInfo, "JAUNCH")
	logger.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("expected debug to be suppressed with a single --debug flag, got %q", buf.String())
	}
}

func TestLoggerDebugEmitsWithTwoDebugFlags(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityDebug, "JAUNCH")
	logger.Debugf("two debug flags")
	if !strings.Contains(buf.String(), "two debug flags") {
		t.Errorf("expected debug to be emitted at VerbosityDebug, got %q", buf.String())
	}
}

func TestLoggerNamedTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, VerbosityQuiet, "JAUNCH")
	child := logger.Named("JVM")
	child.Warnf("cached VM reused")
	if !strings.Contains(buf.String(), "JVM") {
		t.Errorf("expected component tag JVM in output, got %q", buf.String())
	}
}
