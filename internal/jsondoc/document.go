// Package jsondoc reads request documents into a typed tree and builds
// response documents through a checked builder.
package jsondoc

import (
	"fmt"
	"sort"

	"github.com/valyala/fastjson"
)

// ParseError reports malformed JSON text.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed JSON document: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TypeError reports a node whose JSON type differs from what the reader
// asked for. Path locates the node from the document root, e.g.
// "$.base_requests[3].name".
type TypeError struct {
	Path string
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Path, e.Want, e.Got)
}

// Document is a parsed JSON document. Nodes obtained from it stay valid for
// the document's lifetime.
type Document struct {
	parser fastjson.Parser
	root   *fastjson.Value
}

// Parse parses data into a Document.
func Parse(data []byte) (*Document, error) {
	d := &Document{}
	root, err := d.parser.ParseBytes(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	d.root = root
	return d, nil
}

// Root returns the top-level node.
func (d *Document) Root() Node {
	return Node{v: d.root, path: "$"}
}

// Node is one value in a parsed document.
type Node struct {
	v    *fastjson.Value
	path string
}

// Path returns the node's location in the document.
func (n Node) Path() string {
	return n.path
}

// Kind names the node's JSON type: object, array, string, number, bool or
// null.
func (n Node) Kind() string {
	if n.v == nil {
		return "missing"
	}
	switch t := n.v.Type(); t {
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return "bool"
	default:
		return t.String()
	}
}

// IsNull reports whether the node is a JSON null.
func (n Node) IsNull() bool {
	return n.v != nil && n.v.Type() == fastjson.TypeNull
}

func (n Node) typeError(want string) error {
	return &TypeError{Path: n.path, Want: want, Got: n.Kind()}
}

// Map returns the members of an object node.
func (n Node) Map() (map[string]Node, error) {
	if n.v == nil || n.v.Type() != fastjson.TypeObject {
		return nil, n.typeError("object")
	}
	o, _ := n.v.Object()
	members := make(map[string]Node, o.Len())
	o.Visit(func(key []byte, v *fastjson.Value) {
		k := string(key)
		members[k] = Node{v: v, path: n.path + "." + k}
	})
	return members, nil
}

// Keys returns the member names of an object node in sorted order.
func (n Node) Keys() ([]string, error) {
	members, err := n.Map()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Array returns the elements of an array node.
func (n Node) Array() ([]Node, error) {
	if n.v == nil || n.v.Type() != fastjson.TypeArray {
		return nil, n.typeError("array")
	}
	values, _ := n.v.Array()
	elems := make([]Node, len(values))
	for i, v := range values {
		elems[i] = Node{v: v, path: fmt.Sprintf("%s[%d]", n.path, i)}
	}
	return elems, nil
}

// String returns the value of a string node.
func (n Node) String() (string, error) {
	if n.v == nil || n.v.Type() != fastjson.TypeString {
		return "", n.typeError("string")
	}
	b, _ := n.v.StringBytes()
	return string(b), nil
}

// Int returns the value of a number node holding an integer.
func (n Node) Int() (int, error) {
	if n.v == nil || n.v.Type() != fastjson.TypeNumber {
		return 0, n.typeError("integer")
	}
	i, err := n.v.Int()
	if err != nil {
		return 0, &TypeError{Path: n.path, Want: "integer", Got: "number " + n.v.String()}
	}
	return i, nil
}

// Float returns the value of a number node. Integers are accepted.
func (n Node) Float() (float64, error) {
	if n.v == nil || n.v.Type() != fastjson.TypeNumber {
		return 0, n.typeError("number")
	}
	f, _ := n.v.Float64()
	return f, nil
}

// Bool returns the value of a true or false node.
func (n Node) Bool() (bool, error) {
	if n.v == nil {
		return false, n.typeError("bool")
	}
	switch n.v.Type() {
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	}
	return false, n.typeError("bool")
}

// Has reports whether an object node has the member key.
func (n Node) Has(key string) bool {
	if n.v == nil || n.v.Type() != fastjson.TypeObject {
		return false
	}
	return n.v.Get(key) != nil
}

// Get returns the member key of an object node. A missing member is
// reported as a TypeError with Got "missing".
func (n Node) Get(key string) (Node, error) {
	if n.v == nil || n.v.Type() != fastjson.TypeObject {
		return Node{}, n.typeError("object")
	}
	child := Node{v: n.v.Get(key), path: n.path + "." + key}
	if child.v == nil {
		return Node{}, child.typeError("member")
	}
	return child, nil
}

// Lookup is Get for optional members: ok is false when the member is absent
// or n is not an object.
func (n Node) Lookup(key string) (Node, bool) {
	if !n.Has(key) {
		return Node{}, false
	}
	return Node{v: n.v.Get(key), path: n.path + "." + key}, true
}
