package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeedS1Config builds {"a": 1_u32, "b": "hello", "n": {"x": true}},
// finalizes it, and checks read(b)/n/x == true.
func TestSeedS1Config(t *testing.T) {
	b := NewBuilder()
	root := b.Root()

	a, err := root.Child("a")
	require.NoError(t, err)
	require.NoError(t, a.SetU32(1))

	s, err := root.Child("b")
	require.NoError(t, err)
	require.NoError(t, s.SetString("hello"))

	n, err := root.Child("n")
	require.NoError(t, err)
	x, err := n.Child("x")
	require.NoError(t, err)
	require.NoError(t, x.SetBool(true))

	blob, err := Finalize(b)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	parsed, err := Parse(blob)
	require.NoError(t, err)

	node, err := parsed.Root().At("n/x")
	require.NoError(t, err)
	v, err := node.Bool()
	require.NoError(t, err)
	assert.True(t, v)

	av, err := mustU32(t, parsed, "a")
	assert.Equal(t, uint32(1), av)

	bv, err := parsed.Root().Child("b")
	require.NoError(t, err)
	str, err := bv.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", str)
}

func mustU32(t *testing.T, blob *Blob, key string) (uint32, error) {
	t.Helper()
	node, err := blob.Root().Child(key)
	require.NoError(t, err)
	return node.U32()
}

// TestRoundTripAllScalarTypes covers invariant 1: every key/type/value
// survives a build-finalize-read round trip in insertion order.
func TestRoundTripAllScalarTypes(t *testing.T) {
	b := NewBuilder()
	root := b.Root()

	fields := []struct {
		key string
		set func(*Cursor) error
	}{
		{"bool", func(c *Cursor) error { return c.SetBool(true) }},
		{"u8", func(c *Cursor) error { return c.SetU8(200) }},
		{"u16", func(c *Cursor) error { return c.SetU16(60000) }},
		{"u32", func(c *Cursor) error { return c.SetU32(4000000000) }},
		{"u64", func(c *Cursor) error { return c.SetU64(18000000000000000000) }},
		{"i8", func(c *Cursor) error { return c.SetI8(-100) }},
		{"i16", func(c *Cursor) error { return c.SetI16(-30000) }},
		{"i32", func(c *Cursor) error { return c.SetI32(-2000000000) }},
		{"i64", func(c *Cursor) error { return c.SetI64(-9000000000000000000) }},
		{"f32", func(c *Cursor) error { return c.SetF32(3.5) }},
		{"f64", func(c *Cursor) error { return c.SetF64(2.71828) }},
		{"str", func(c *Cursor) error { return c.SetString("hailstorm") }},
		{"blob", func(c *Cursor) error { return c.SetBlob([]byte{1, 2, 3, 0xFF}) }},
	}

	for _, f := range fields {
		cur, err := root.Child(f.key)
		require.NoError(t, err)
		require.NoError(t, f.set(cur))
	}

	blob, err := Finalize(b)
	require.NoError(t, err)
	parsed, err := Parse(blob)
	require.NoError(t, err)

	get := func(key string) Node {
		n, err := parsed.Root().Child(key)
		require.NoError(t, err)
		return n
	}

	bv, err := get("bool").Bool()
	require.NoError(t, err)
	assert.True(t, bv)

	u8v, err := get("u8").U8()
	require.NoError(t, err)
	assert.EqualValues(t, 200, u8v)

	u64v, err := get("u64").U64()
	require.NoError(t, err)
	assert.EqualValues(t, 18000000000000000000, u64v)

	i64v, err := get("i64").I64()
	require.NoError(t, err)
	assert.EqualValues(t, -9000000000000000000, i64v)

	f32v, err := get("f32").F32()
	require.NoError(t, err)
	assert.EqualValues(t, float32(3.5), f32v)

	f64v, err := get("f64").F64()
	require.NoError(t, err)
	assert.InDelta(t, 2.71828, f64v, 1e-9)

	strv, err := get("str").String()
	require.NoError(t, err)
	assert.Equal(t, "hailstorm", strv)

	blobv, err := get("blob").Blob()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 0xFF}, blobv)

	// WrongValueType on a mismatched typed read.
	_, err = get("bool").U32()
	require.Error(t, err)
}

// TestKeyInterningDedup covers invariant 2: two entries with equal key text
// never get distinct key offsets.
func TestKeyInterningDedup(t *testing.T) {
	b := NewBuilder()
	root := b.Root()

	obj1, err := root.Child("items")
	require.NoError(t, err)

	c1, err := obj1.Append()
	require.NoError(t, err)
	n1, err := c1.Child("name")
	require.NoError(t, err)
	require.NoError(t, n1.SetString("one"))

	c2, err := obj1.Append()
	require.NoError(t, err)
	n2, err := c2.Child("name")
	require.NoError(t, err)
	require.NoError(t, n2.SetString("two"))

	blob, err := Finalize(b)
	require.NoError(t, err)

	parsed, err := Parse(blob)
	require.NoError(t, err)

	items, err := parsed.Root().Child("items")
	require.NoError(t, err)
	first, err := items.Index(0)
	require.NoError(t, err)
	second, err := items.Index(1)
	require.NoError(t, err)

	firstName, err := first.Child("name")
	require.NoError(t, err)
	secondName, err := second.Child("name")
	require.NoError(t, err)

	// Equal key text across siblings must share one interned offset.
	assert.Equal(t,
		parsed.keyAt(firstName.index).offset(),
		parsed.keyAt(secondName.index).offset())
}

// TestStringTailInvariant covers invariant 3: the byte before a string
// value's offset is always NUL.
func TestStringTailInvariant(t *testing.T) {
	b := NewBuilder()
	list, err := b.Root().Child("list")
	require.NoError(t, err)
	for _, s := range []string{"alpha", "beta", "gamma", ""} {
		cur, err := list.Append()
		require.NoError(t, err)
		require.NoError(t, cur.SetString(s))
	}

	blob, err := Finalize(b)
	require.NoError(t, err)
	parsed, err := Parse(blob)
	require.NoError(t, err)

	table, err := parsed.Root().Child("list")
	require.NoError(t, err)
	n := table.Len()
	require.Equal(t, 4, n)
	for i := 0; i < n; i++ {
		node, err := table.Index(i)
		require.NoError(t, err)
		off := parsed.valueAt(node.index)
		require.Greater(t, off, uint32(0))
		assert.Equal(t, byte(0), blob[off-1])
	}
}

func TestOverwriteFreesPriorContainer(t *testing.T) {
	b := NewBuilder()
	root := b.Root()

	child, err := root.Child("x")
	require.NoError(t, err)
	grand, err := child.Child("y")
	require.NoError(t, err)
	require.NoError(t, grand.SetU32(7))

	// Overwriting "x" with a scalar must be legal even though it held a
	// non-empty Object subtree.
	require.NoError(t, child.SetU32(42))

	blob, err := Finalize(b)
	require.NoError(t, err)
	parsed, err := Parse(blob)
	require.NoError(t, err)

	node, err := parsed.Root().Child("x")
	require.NoError(t, err)
	v, err := node.U32()
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}
