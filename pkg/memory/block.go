package memory

// Block is a sized, aligned memory allocation. Data's length always equals
// Size; Align records the alignment the block was requested with. The
// allocators in this package do not check it on deallocation.
type Block struct {
	Data  []byte
	Size  Size
	Align Alignment
}

// Valid reports whether the block carries live backing storage.
func (b Block) Valid() bool {
	return b.Data != nil
}

// View returns a read-only DataView over the block's bytes.
func (b Block) View() DataView {
	return DataView{Data: b.Data}
}

// DataView is a read-only view over memory that does not own it: readers
// never mutate it and never deallocate it. Used for bytes handed out by a
// frozen config/hailstorm blob.
type DataView struct {
	Data []byte
}

func (v DataView) Size() Size { return Size(len(v.Data)) }
