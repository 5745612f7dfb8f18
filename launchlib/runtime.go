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

// Runtime is the contract every in-process language runtime implements:
// load (or reuse a cached) runtime library and invoke a program with it,
// then release resources once all directives have been processed. JVM
// and Python both satisfy this; a third runtime needs only a new
// implementation registered under a new directive name, not a change to
// the interpreter loop.
type Runtime interface {
	// Invoke parses argv per the runtime's own directive grammar, loads
	// (or reuses) its native library, and runs the requested program.
	// It returns once the program has finished; for runtimes that never
	// return control within a single process (none currently), that
	// would need a different contract.
	Invoke(argv []string) error

	// Cleanup releases any cached runtime library/VM handle. Called once,
	// after all directives have been processed.
	Cleanup()
}

// RuntimeRegistry maps directive names to the Runtime implementation
// that handles them. It exists so Interpreter.ExecuteDirective doesn't
// need a switch statement hard-coding JVM and Python; adding a runtime
// is a registration call, not an edit to the dispatch logic.
type RuntimeRegistry struct {
	runtimes map[DirectiveName]Runtime
}

// NewRuntimeRegistry returns an empty registry.
func NewRuntimeRegistry() *RuntimeRegistry {
	return &RuntimeRegistry{runtimes: make(map[DirectiveName]Runtime)}
}

// Register associates a directive name with a Runtime implementation.
func (r *RuntimeRegistry) Register(name DirectiveName, rt Runtime) {
	r.runtimes[name] = rt
}

// Lookup returns the Runtime registered for name, if any.
func (r *RuntimeRegistry) Lookup(name DirectiveName) (Runtime, bool) {
	rt, ok := r.runtimes[name]
	return rt, ok
}

// CleanupAll calls Cleanup on every registered runtime, in registration
// order is not guaranteed since map iteration order is random; this
// mirrors the original's unconditional cleanup_jvm()+cleanup_python()
// pair, which likewise doesn't depend on ordering between runtimes.
func (r *RuntimeRegistry) CleanupAll() {
	for _, rt := range r.runtimes {
		rt.Cleanup()
	}
}
