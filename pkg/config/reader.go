package config

import (
	"encoding/binary"
	"math"

	"github.com/emberforge/ember/pkg/errs"
)

// Blob is a parsed, frozen configuration tree: it never copies data, only
// indexes into the byte slice it was given.
//
// The wire format's 8-byte reserved header only has room for total_size and
// header_size (the spec's bit-exact layout), so entry count — needed to
// locate the Values array and the interned-key region — is carried in the
// otherwise-unused Key.offset field of entry 0 (the root never has a key,
// so that field is free). Finalize writes it there; Parse reads it back.
type Blob struct {
	data          []byte
	entryCount    int
	keysStart     uint64
	valuesStart   uint64
	internedStart uint64
	payloadStart  uint64
}

// Parse validates and indexes a finalized blob.
func Parse(data []byte) (*Blob, error) {
	if len(data) < headerSize+keyWidth {
		return nil, errs.New(errs.InvalidArgument, nil, "config blob too small: %d bytes", len(data))
	}
	totalSize, payloadStart := readHeaderFields(data)
	if uint64(totalSize) != uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "config blob total_size %d does not match buffer length %d", totalSize, len(data))
	}

	rootKey := keyBits(binary.LittleEndian.Uint64(data[headerSize : headerSize+keyWidth]))
	entryCount := int(rootKey.offset())
	if entryCount < 2 {
		return nil, errs.New(errs.InvalidArgument, nil, "config blob entry count %d is invalid", entryCount)
	}

	keysStart := uint64(headerSize)
	valuesStart := keysStart + uint64(entryCount)*keyWidth
	internedStart := valuesStart + uint64(entryCount)*valueWidth
	if uint64(payloadStart) < internedStart || uint64(payloadStart) > uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "config blob header_size %d out of range", payloadStart)
	}

	return &Blob{
		data:          data,
		entryCount:    entryCount,
		keysStart:     keysStart,
		valuesStart:   valuesStart,
		internedStart: internedStart,
		payloadStart:  uint64(payloadStart),
	}, nil
}

func (b *Blob) keyAt(i int) keyBits {
	off := b.keysStart + uint64(i)*keyWidth
	return keyBits(binary.LittleEndian.Uint64(b.data[off : off+keyWidth]))
}

func (b *Blob) valueAt(i int) uint32 {
	off := b.valuesStart + uint64(i)*valueWidth
	return binary.LittleEndian.Uint32(b.data[off : off+valueWidth])
}

func (b *Blob) keyText(k keyBits) string {
	start := b.internedStart + uint64(k.offset())
	return string(b.data[start : start+uint64(k.size())])
}

// Root returns the root Node, always an Object.
func (b *Blob) Root() Node { return Node{blob: b, index: 0} }

// Node is a read-only handle onto one entry of a parsed Blob.
type Node struct {
	blob  *Blob
	index int
}

// Type reports the node's value type.
func (n Node) Type() ValueType { return n.blob.keyAt(n.index).valueType() }

// Key returns the node's key text, or "" if it has none (root, or a Table
// element).
func (n Node) Key() string {
	k := n.blob.keyAt(n.index)
	if k.keyType() != KeyString {
		return ""
	}
	return n.blob.keyText(k)
}

func (n Node) firstChild() (Node, bool) {
	v := n.blob.valueAt(n.index)
	if v == emptyContainer {
		return Node{}, false
	}
	return Node{blob: n.blob, index: n.index + int(v)}, true
}

func (n Node) hasNext() bool { return n.blob.keyAt(n.index).next() }

func (n Node) nextSibling() (Node, bool) {
	if !n.hasNext() {
		return Node{}, false
	}
	return Node{blob: n.blob, index: n.index + 1}, true
}

// Child navigates to key within this Object node. Sibling matching
// compares key text directly; the source format's offset-equality
// micro-optimization (comparing interned offsets instead of bytes) is
// skipped here since Go string comparison is already cheap and this keeps
// the reader free of a separate intern-offset resolution step.
func (n Node) Child(key string) (Node, error) {
	if n.Type() != ValueObject {
		return Node{}, errs.New(errs.WrongValueType, nil, "not an object: %s", n.Type())
	}
	child, ok := n.firstChild()
	if !ok {
		return Node{}, errs.New(errs.ResourceNotFound, nil, "key %q not found", key)
	}
	for {
		if child.Key() == key {
			return child, nil
		}
		next, ok := child.nextSibling()
		if !ok {
			return Node{}, errs.New(errs.ResourceNotFound, nil, "key %q not found", key)
		}
		child = next
	}
}

// At navigates a '/'- or '.'-separated path of object keys from this node.
func (n Node) At(path string) (Node, error) {
	cur := n
	for _, seg := range splitPath(path) {
		next, err := cur.Child(seg)
		if err != nil {
			return Node{}, err
		}
		cur = next
	}
	return cur, nil
}

// Index navigates to the i'th (0-based) element of this Table node.
func (n Node) Index(i int) (Node, error) {
	if n.Type() != ValueTable {
		return Node{}, errs.New(errs.WrongValueType, nil, "not a table: %s", n.Type())
	}
	if i < 0 {
		return Node{}, errs.New(errs.InvalidArgument, nil, "negative table index %d", i)
	}
	child, ok := n.firstChild()
	if !ok {
		return Node{}, errs.New(errs.ResourceNotFound, nil, "table index %d out of range", i)
	}
	for step := 0; step < i; step++ {
		next, ok := child.nextSibling()
		if !ok {
			return Node{}, errs.New(errs.ResourceNotFound, nil, "table index %d out of range", i)
		}
		child = next
	}
	return child, nil
}

// Len counts this container node's children (0 for a scalar or empty
// container). For a Table, the count is read directly out of the first
// child's packed offset/size fields (see Finalize) instead of walking
// siblings.
func (n Node) Len() int {
	child, ok := n.firstChild()
	if !ok {
		return 0
	}
	if n.Type() == ValueTable {
		k := n.blob.keyAt(child.index)
		return int(k.offset())<<sizeBits | int(k.size())
	}
	count := 1
	for {
		next, ok := child.nextSibling()
		if !ok {
			return count
		}
		child = next
		count++
	}
}

func (n Node) expect(vt ValueType) error {
	if n.Type() != vt {
		return errs.New(errs.WrongValueType, nil, "expected %s, got %s", vt, n.Type())
	}
	return nil
}

func (n Node) Bool() (bool, error) {
	if err := n.expect(ValueBool); err != nil {
		return false, err
	}
	return n.blob.valueAt(n.index) != 0, nil
}

func (n Node) U8() (uint8, error) {
	if err := n.expect(ValueU8); err != nil {
		return 0, err
	}
	return uint8(n.blob.valueAt(n.index)), nil
}

func (n Node) U16() (uint16, error) {
	if err := n.expect(ValueU16); err != nil {
		return 0, err
	}
	return uint16(n.blob.valueAt(n.index)), nil
}

func (n Node) U32() (uint32, error) {
	if err := n.expect(ValueU32); err != nil {
		return 0, err
	}
	return n.blob.valueAt(n.index), nil
}

func (n Node) U64() (uint64, error) {
	if err := n.expect(ValueU64); err != nil {
		return 0, err
	}
	off := uint64(n.blob.valueAt(n.index))
	return binary.LittleEndian.Uint64(n.blob.data[off : off+8]), nil
}

func (n Node) I8() (int8, error) {
	if err := n.expect(ValueI8); err != nil {
		return 0, err
	}
	return int8(uint8(n.blob.valueAt(n.index))), nil
}

func (n Node) I16() (int16, error) {
	if err := n.expect(ValueI16); err != nil {
		return 0, err
	}
	return int16(uint16(n.blob.valueAt(n.index))), nil
}

func (n Node) I32() (int32, error) {
	if err := n.expect(ValueI32); err != nil {
		return 0, err
	}
	return int32(n.blob.valueAt(n.index)), nil
}

func (n Node) I64() (int64, error) {
	if err := n.expect(ValueI64); err != nil {
		return 0, err
	}
	off := uint64(n.blob.valueAt(n.index))
	return int64(binary.LittleEndian.Uint64(n.blob.data[off : off+8])), nil
}

func (n Node) F32() (float32, error) {
	if err := n.expect(ValueF32); err != nil {
		return 0, err
	}
	return math.Float32frombits(n.blob.valueAt(n.index)), nil
}

func (n Node) F64() (float64, error) {
	if err := n.expect(ValueF64); err != nil {
		return 0, err
	}
	off := uint64(n.blob.valueAt(n.index))
	return math.Float64frombits(binary.LittleEndian.Uint64(n.blob.data[off : off+8])), nil
}

func (n Node) readTail() ([]byte, error) {
	off := uint64(n.blob.valueAt(n.index))
	data := n.blob.data
	if off == 0 || off > uint64(len(data)) {
		return nil, errs.New(errs.InvalidArgument, nil, "string/blob offset %d out of range", off)
	}
	if data[off-1] != 0 {
		return nil, errs.New(errs.InvalidArgument, nil, "string/blob at %d missing leading NUL marker", off)
	}
	end := off
	for end < uint64(len(data)) && data[end] != 0 {
		end++
	}
	return data[off:end], nil
}

func (n Node) String() (string, error) {
	if err := n.expect(ValueString); err != nil {
		return "", err
	}
	b, err := n.readTail()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (n Node) Blob() ([]byte, error) {
	if err := n.expect(ValueBlob); err != nil {
		return nil, err
	}
	return n.readTail()
}
