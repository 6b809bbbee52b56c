package config

import (
	"math"
	"strings"

	"github.com/emberforge/ember/pkg/errs"
)

// container is a mutable Object or Table. Its refcount starts at 1 when the
// container is created and is decremented when a SetX/Child/Index call
// replaces the value that held it; creating or dropping a Cursor does not
// change it. A container with no remaining reference is simply left for the
// garbage collector (Go has no destructor hook to run eagerly, so "destroy"
// here means "stop referencing").
type container struct {
	kind     ValueType // ValueObject or ValueTable
	children []*buildEntry
	index    map[string]int // key -> children slice index, Object only
	refcount int
}

func newContainer(kind ValueType) *container {
	c := &container{kind: kind, refcount: 1}
	if kind == ValueObject {
		c.index = make(map[string]int)
	}
	return c
}

// buildValue is the builder's tagged value union: exactly one of the fields
// below is meaningful, selected by vtype.
type buildValue struct {
	vtype      ValueType
	scalarBits uint64 // Bool/U8../I64/F32/F64, raw bit pattern
	tail       []byte // String/Blob payload, written back-to-front at finalize
	container  *container
}

type buildEntry struct {
	hasKey bool
	key    string
	value  buildValue
}

// Builder holds a tree of container entries rooted at an Object. Navigate it
// with Root(), then Child/Index/SetX on the returned Cursor.
type Builder struct {
	root *buildEntry
}

// NewBuilder returns an empty builder whose root is an empty Object.
func NewBuilder() *Builder {
	root := &buildEntry{}
	root.value.vtype = ValueObject
	root.value.container = newContainer(ValueObject)
	return &Builder{root: root}
}

// Root returns a cursor over the builder's root Object.
func (b *Builder) Root() *Cursor { return &Cursor{entry: b.root} }

// Cursor is a non-owning handle onto one entry in a builder tree.
type Cursor struct {
	entry *buildEntry
}

// Type reports the value type currently installed at this cursor.
func (c *Cursor) Type() ValueType { return c.entry.value.vtype }

func splitPath(path string) []string {
	path = strings.Trim(path, "/.")
	if path == "" {
		return nil
	}
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '.' })
}

// clear drops whatever value currently lives at this entry, releasing its
// container subtree's reference (see container.refcount) and type so a new
// value can be installed. Per the builder's failure-mode contract this is
// always legal, even when the prior value was a non-empty container.
func (c *Cursor) clear() {
	if c.entry.value.container != nil {
		c.entry.value.container.refcount--
	}
	c.entry.value = buildValue{}
}

func (c *Cursor) becomeContainer(kind ValueType) *container {
	c.clear()
	ctr := newContainer(kind)
	c.entry.value.vtype = kind
	c.entry.value.container = ctr
	return ctr
}

// Child navigates a '/'- or '.'-separated path of object keys below this
// cursor, creating intermediate Objects and missing keys with value type
// None as needed. If the cursor currently holds no value it becomes an
// Object; if it holds an incompatible scalar or Table, Child fails.
func (c *Cursor) Child(path string) (*Cursor, error) {
	segs := splitPath(path)
	cur := c
	for _, seg := range segs {
		next, err := cur.childKey(seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (c *Cursor) childKey(key string) (*Cursor, error) {
	var ctr *container
	switch c.entry.value.vtype {
	case ValueNone:
		ctr = c.becomeContainer(ValueObject)
	case ValueObject:
		ctr = c.entry.value.container
	default:
		return nil, errs.New(errs.InvalidArgument, nil, "cannot navigate key %q into a %s value", key, c.entry.value.vtype)
	}
	if idx, ok := ctr.index[key]; ok {
		return &Cursor{entry: ctr.children[idx]}, nil
	}
	e := &buildEntry{hasKey: true, key: key}
	ctr.index[key] = len(ctr.children)
	ctr.children = append(ctr.children, e)
	return &Cursor{entry: e}, nil
}

// Index navigates to the i'th entry of a Table below this cursor, extending
// the table with None-valued entries if it has no entry i yet. If the cursor
// currently holds no value it becomes a Table.
func (c *Cursor) Index(i int) (*Cursor, error) {
	if i < 0 {
		return nil, errs.New(errs.InvalidArgument, nil, "negative table index %d", i)
	}
	var ctr *container
	switch c.entry.value.vtype {
	case ValueNone:
		ctr = c.becomeContainer(ValueTable)
	case ValueTable:
		ctr = c.entry.value.container
	default:
		return nil, errs.New(errs.InvalidArgument, nil, "cannot index a %s value", c.entry.value.vtype)
	}
	for len(ctr.children) <= i {
		ctr.children = append(ctr.children, &buildEntry{})
	}
	return &Cursor{entry: ctr.children[i]}, nil
}

// Append adds a new entry to the end of a Table below this cursor and
// returns a cursor to it, creating the Table if the cursor held no value.
func (c *Cursor) Append() (*Cursor, error) {
	var ctr *container
	switch c.entry.value.vtype {
	case ValueNone:
		ctr = c.becomeContainer(ValueTable)
	case ValueTable:
		ctr = c.entry.value.container
	default:
		return nil, errs.New(errs.InvalidArgument, nil, "cannot append to a %s value", c.entry.value.vtype)
	}
	e := &buildEntry{}
	ctr.children = append(ctr.children, e)
	return &Cursor{entry: e}, nil
}

// Len reports the number of children of a container cursor, or 0 for a
// scalar/None cursor.
func (c *Cursor) Len() int {
	if c.entry.value.container == nil {
		return 0
	}
	return len(c.entry.value.container.children)
}

func (c *Cursor) setScalar(vt ValueType, bits uint64) error {
	c.clear()
	c.entry.value.vtype = vt
	c.entry.value.scalarBits = bits
	return nil
}

func (c *Cursor) SetBool(v bool) error {
	var b uint64
	if v {
		b = 1
	}
	return c.setScalar(ValueBool, b)
}
func (c *Cursor) SetU8(v uint8) error   { return c.setScalar(ValueU8, uint64(v)) }
func (c *Cursor) SetU16(v uint16) error { return c.setScalar(ValueU16, uint64(v)) }
func (c *Cursor) SetU32(v uint32) error { return c.setScalar(ValueU32, uint64(v)) }
func (c *Cursor) SetU64(v uint64) error { return c.setScalar(ValueU64, v) }
func (c *Cursor) SetI8(v int8) error    { return c.setScalar(ValueI8, uint64(uint8(v))) }
func (c *Cursor) SetI16(v int16) error  { return c.setScalar(ValueI16, uint64(uint16(v))) }
func (c *Cursor) SetI32(v int32) error  { return c.setScalar(ValueI32, uint64(uint32(v))) }
func (c *Cursor) SetI64(v int64) error  { return c.setScalar(ValueI64, uint64(v)) }
func (c *Cursor) SetF32(v float32) error {
	return c.setScalar(ValueF32, uint64(math.Float32bits(v)))
}
func (c *Cursor) SetF64(v float64) error { return c.setScalar(ValueF64, math.Float64bits(v)) }

// SetString installs a string value, freeing any prior container subtree.
func (c *Cursor) SetString(v string) error {
	c.clear()
	c.entry.value.vtype = ValueString
	c.entry.value.tail = []byte(v)
	return nil
}

// SetBlob installs an opaque byte-blob value.
func (c *Cursor) SetBlob(v []byte) error {
	c.clear()
	c.entry.value.vtype = ValueBlob
	c.entry.value.tail = append([]byte(nil), v...)
	return nil
}
