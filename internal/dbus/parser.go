// Package dbus reconstructs notification events from the line-oriented
// trace that dbus-monitor prints for the org.freedesktop.Notifications
// interface. It is a best-effort reader of one vendor's text format,
// not a protocol decoder: lines it does not recognize are silence, and
// a parser never returns an error.
package dbus

import (
	"strconv"
	"strings"
	"unicode"
)

// EventKind discriminates parser events.
type EventKind int

const (
	// EventNewItem marks the start of a Notify frame.
	EventNewItem EventKind = iota
	// EventField carries one extracted positional argument.
	EventField
	// EventComplete carries a fully assembled notification.
	EventComplete
	// EventClosed carries the id argument of a NotificationClosed
	// signal.
	EventClosed
)

// Event is one parser output. Slot and Value are set for EventField,
// Notification for EventComplete, CloseID for EventClosed.
type Event struct {
	Kind         EventKind
	Slot         string
	Value        string
	Notification Notification
	CloseID      uint32
}

type parserState int

const (
	stateIdle parserState = iota
	stateCollecting
	stateCloseWait
)

// Parser assembles multi-line protocol frames into discrete events.
// One parser serves one subprocess session; a reconnect constructs a
// fresh parser, discarding any partially collected frame.
type Parser struct {
	schema Schema
	state  parserState
	values []string
	filled []bool
}

// NewParser returns a parser for one line-source session, using the
// given positional schema for Notify frames.
func NewParser(schema Schema) *Parser {
	return &Parser{
		schema: schema,
		values: make([]string, len(schema)),
		filled: make([]bool, len(schema)),
	}
}

// Feed consumes one trace line and returns the events it completes,
// usually none. Feed never fails; unrecognized input in any state is
// ignored.
func (p *Parser) Feed(line string) []Event {
	// A Notify header restarts collection from any state, so a frame
	// that lost its tail to the trace cannot swallow the next one.
	if isNotifyHeader(line) {
		p.beginFrame()
		return []Event{{Kind: EventNewItem}}
	}

	switch p.state {
	case stateIdle:
		if isCloseHeader(line) {
			p.state = stateCloseWait
		}
	case stateCollecting:
		return p.collect(line)
	case stateCloseWait:
		if id, ok := uintValue(line); ok {
			p.state = stateIdle
			return []Event{{Kind: EventClosed, CloseID: id}}
		}
	}
	return nil
}

func (p *Parser) beginFrame() {
	p.state = stateCollecting
	for i := range p.filled {
		p.values[i] = ""
		p.filled[i] = false
	}
}

func (p *Parser) collect(line string) []Event {
	value, ok := quotedValue(line)
	if !ok {
		return nil
	}

	next := -1
	for i, done := range p.filled {
		if !done {
			next = i
			break
		}
	}
	if next < 0 {
		return nil
	}

	slot := p.schema[next]
	if value == "" && !slot.AllowEmpty {
		return nil
	}

	p.filled[next] = true
	var events []Event
	if !slot.Discard {
		p.values[next] = value
		events = append(events, Event{Kind: EventField, Slot: slot.Name, Value: value})
	}

	if next == len(p.schema)-1 {
		p.state = stateIdle
		events = append(events, Event{Kind: EventComplete, Notification: p.schema.notification(p.values)})
	}
	return events
}

func isNotifyHeader(line string) bool {
	return strings.Contains(line, "method call") && strings.Contains(line, "member=Notify")
}

func isCloseHeader(line string) bool {
	return strings.Contains(line, "signal") && strings.Contains(line, "member=NotificationClosed")
}

// quotedValue extracts the payload of a `string "..."` argument line.
func quotedValue(line string) (string, bool) {
	rest := strings.TrimSpace(line)
	if !strings.HasPrefix(rest, "string ") {
		return "", false
	}
	rest = rest[len("string "):]
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(rest[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return rest[start+1 : start+1+end], true
}

// uintValue extracts the payload of a `uint32 N` argument line.
func uintValue(line string) (uint32, bool) {
	rest := strings.TrimSpace(line)
	if !strings.HasPrefix(rest, "uint32 ") {
		return 0, false
	}
	rest = strings.TrimSpace(rest[len("uint32 "):])
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		rest = rest[:i]
	}
	v, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
