// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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

// Package debug provides the observability event hook used by crawl
// sessions. A Debugger receives one Event per noteworthy step (request,
// response, policy denial, external-domain admission, error), which is
// useful for tracing admission decisions without attaching a full logger.
package debug

import (
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Event represents a single crawl event emitted to the Debugger.
type Event struct {
	// Type is the event type, e.g. "request", "response", "robots-denied",
	// "external-admitted", "error"
	Type string
	// RequestID identifies the request inside a session
	RequestID uint32
	// SessionID identifies the crawl session
	SessionID uint32
	// Values contains event-specific key-value pairs
	Values map[string]string
}

// Debugger is the interface crawl sessions emit events to.
type Debugger interface {
	// Init initializes the debugger backend
	Init() error
	// Event receives a new crawl event
	Event(e *Event)
}

// LogDebugger is the simplest Debugger implementation: it writes events as
// log lines to Output, which defaults to os.Stderr.
type LogDebugger struct {
	// Output is the log destination, defaults to os.Stderr
	Output io.Writer
	// Prefix appears at the beginning of each log line
	Prefix string
	// Flag is the log prefix flag set, passed through to the log package
	Flag int

	logger  *log.Logger
	counter int32
	start   time.Time
}

// Init implements Debugger.
func (l *LogDebugger) Init() error {
	l.counter = 0
	l.start = time.Now()
	if l.Output == nil {
		l.Output = os.Stderr
	}
	l.logger = log.New(l.Output, l.Prefix, l.Flag)
	return nil
}

// Event implements Debugger.
func (l *LogDebugger) Event(e *Event) {
	i := atomic.AddInt32(&l.counter, 1)
	l.logger.Printf("[%06d] [%6d - %s] %q (%s)\n", i, e.RequestID, e.Type, e.Values, time.Since(l.start))
}
