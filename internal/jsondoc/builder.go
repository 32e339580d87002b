package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrBuilderMisuse is wrapped by every error a Builder reports.
var ErrBuilderMisuse = errors.New("json builder misuse")

type builderState int

const (
	stateExpectValue builderState = iota
	stateInMap
	stateExpectMapValue
	stateInArray
	stateDone
)

func (s builderState) String() string {
	switch s {
	case stateExpectValue:
		return "expecting a value"
	case stateInMap:
		return "inside a map"
	case stateExpectMapValue:
		return "expecting a map value"
	case stateInArray:
		return "inside an array"
	case stateDone:
		return "complete"
	}
	return "unknown"
}

type container struct {
	state builderState
	key   string
	m     map[string]any
	a     []any
}

// Builder assembles a document of maps, arrays and scalars one call at a
// time. The first misuse is remembered: later calls are ignored and Build
// returns the error.
//
//	v, err := jsondoc.NewBuilder().
//		StartMap().
//		Key("request_id").Value(1).
//		Key("buses").StartArray().Value("14").EndArray().
//		EndMap().
//		Build()
type Builder struct {
	stack []*container
	root  any
	done  bool
	err   error
}

// NewBuilder returns an empty builder expecting the root value.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) state() builderState {
	if b.done {
		return stateDone
	}
	if len(b.stack) == 0 {
		return stateExpectValue
	}
	return b.stack[len(b.stack)-1].state
}

func (b *Builder) fail(op string) *Builder {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s while %s", ErrBuilderMisuse, op, b.state())
	}
	return b
}

func acceptsValue(s builderState) bool {
	return s == stateExpectValue || s == stateExpectMapValue || s == stateInArray
}

// place stores a finished value in the current container.
func (b *Builder) place(v any) {
	if len(b.stack) == 0 {
		b.root = v
		b.done = true
		return
	}
	top := b.stack[len(b.stack)-1]
	switch top.state {
	case stateExpectMapValue:
		top.m[top.key] = v
		top.state = stateInMap
	case stateInArray:
		top.a = append(top.a, v)
	}
}

// Key names the next value of the enclosing map.
func (b *Builder) Key(key string) *Builder {
	if b.err != nil {
		return b
	}
	if b.state() != stateInMap {
		return b.fail(fmt.Sprintf("key %q", key))
	}
	top := b.stack[len(b.stack)-1]
	top.key = key
	top.state = stateExpectMapValue
	return b
}

// Value adds a scalar or an already built value.
func (b *Builder) Value(v any) *Builder {
	if b.err != nil {
		return b
	}
	if !acceptsValue(b.state()) {
		return b.fail("value")
	}
	b.place(v)
	return b
}

// StartMap opens a map where a value is expected.
func (b *Builder) StartMap() *Builder {
	if b.err != nil {
		return b
	}
	if !acceptsValue(b.state()) {
		return b.fail("map start")
	}
	b.stack = append(b.stack, &container{state: stateInMap, m: make(map[string]any)})
	return b
}

// EndMap closes the innermost container, which must be a map with no
// pending key.
func (b *Builder) EndMap() *Builder {
	if b.err != nil {
		return b
	}
	if b.state() != stateInMap {
		return b.fail("map end")
	}
	top := b.pop()
	b.place(top.m)
	return b
}

// StartArray opens an array where a value is expected.
func (b *Builder) StartArray() *Builder {
	if b.err != nil {
		return b
	}
	if !acceptsValue(b.state()) {
		return b.fail("array start")
	}
	b.stack = append(b.stack, &container{state: stateInArray, a: []any{}})
	return b
}

// EndArray closes the innermost container, which must be an array.
func (b *Builder) EndArray() *Builder {
	if b.err != nil {
		return b
	}
	if b.state() != stateInArray {
		return b.fail("array end")
	}
	top := b.pop()
	b.place(top.a)
	return b
}

func (b *Builder) pop() *container {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return top
}

// Err returns the first misuse, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build returns the finished document. It fails when a misuse occurred or
// the document is empty or has unclosed containers.
func (b *Builder) Build() (any, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.done {
		return nil, fmt.Errorf("%w: build while %s", ErrBuilderMisuse, b.state())
	}
	return b.root, nil
}

// Encode writes v as JSON followed by a newline. Map keys are written in
// sorted order. A positive indent pretty-prints with that many spaces per
// level.
func Encode(w io.Writer, v any, indent int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON document: %w", err)
	}
	return nil
}
