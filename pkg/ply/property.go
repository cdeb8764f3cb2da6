package ply

// Property is a named field of an Element. Its storage holds one row per item
// of the owning element, typed by the memory type.
type Property struct {
	name     string
	kind     Kind
	fileType Type
	memType  Type
	sizeType Type
	parent   *Element
	data     any
	rows     int
}

// NewValueProperty creates an unattached property holding one scalar per row.
// An Invalid mem type defaults to the file type.
func NewValueProperty(name string, file, mem Type) *Property {
	if !mem.Valid() {
		mem = file
	}
	return &Property{name: name, kind: Value, fileType: file, memType: mem, sizeType: Invalid}
}

// NewListProperty creates an unattached property holding a list per row, whose
// length is encoded with the size type.
func NewListProperty(name string, size, file, mem Type) *Property {
	if !mem.Valid() {
		mem = file
	}
	return &Property{name: name, kind: List, fileType: file, memType: mem, sizeType: size}
}

func (p *Property) Name() string       { return p.name }
func (p *Property) Kind() Kind         { return p.kind }
func (p *Property) FileType() Type     { return p.fileType }
func (p *Property) MemType() Type      { return p.memType }
func (p *Property) SizeType() Type     { return p.sizeType }
func (p *Property) Parent() *Element   { return p.parent }
func (p *Property) Allocated() bool    { return p.data != nil }
func (p *Property) SetFileType(t Type) { p.fileType = t }
func (p *Property) SetSizeType(t Type) { p.sizeType = t }

// Len returns the number of allocated rows
func (p *Property) Len() int {
	return p.rows
}

// Rename changes the name, failing if the owning element already has a property by that name
func (p *Property) Rename(name string) error {
	if name == p.name {
		return nil
	}
	if p.parent != nil {
		if p.parent.HasProperty(name) {
			return schemaError("element '%s' already has a property named '%s'", p.parent.name, name)
		}
		p.parent.renameProperty(p.name, name)
	}
	p.name = name
	return nil
}

// SetKind switches between value and list storage. Existing data is lost; if the
// property was allocated it is reallocated empty with the same row count.
func (p *Property) SetKind(k Kind) {
	if k == p.kind {
		return
	}
	allocated := p.data != nil
	rows := p.rows
	p.Deallocate()
	p.kind = k
	if allocated {
		p.Allocate(rows)
	}
}

// SetMemType changes the in-memory type. Allocated data is reallocated in the new
// type and every value cast with Go conversion rules; the old storage is dropped.
// Not safe to call while the property is being read elsewhere.
func (p *Property) SetMemType(t Type) {
	if t == p.memType {
		return
	}
	if p.data == nil {
		p.memType = t
		return
	}
	// Invalid means the property is skipped when content is read.
	if !t.Valid() {
		p.memType = t
		p.data = nil
		return
	}
	if p.parent != nil && p.parent.parent != nil {
		p.parent.parent.log().Debug("converting property content",
			"element", p.parent.name, "property", p.name,
			"from", p.memType.String(), "to", t.String())
	}
	converted := convertData(p.data, p.kind, p.memType, t)
	p.data, p.memType = converted, t
}

// Allocate replaces any storage with n zero rows of the memory type
func (p *Property) Allocate(n int) {
	p.data = nil
	p.rows = 0
	if !p.memType.Valid() {
		return
	}
	col := columns[p.memType]
	if p.kind == List {
		p.data = col.makeLists(n)
	} else {
		p.data = col.makeValues(n)
	}
	p.rows = n
}

// Deallocate drops the storage
func (p *Property) Deallocate() {
	p.data = nil
	p.rows = 0
}

// Resize changes the row count, keeping existing rows. Unallocated properties
// only record the new count.
func (p *Property) Resize(n int) {
	if p.data != nil {
		p.data = columns[p.memType].resize(p.data, p.kind, n)
	}
	p.rows = n
}

func (p *Property) setParent(el *Element) {
	p.parent = el
}

// Values returns the value storage of p when it holds values of memory type T
func Values[T Scalar](p *Property) ([]T, bool) {
	if p.kind != Value || p.memType != TypeOf[T]() {
		return nil, false
	}
	v, ok := p.data.([]T)
	return v, ok
}

// Lists returns the list storage of p when it holds lists of memory type T
func Lists[T Scalar](p *Property) ([][]T, bool) {
	if p.kind != List || p.memType != TypeOf[T]() {
		return nil, false
	}
	v, ok := p.data.([][]T)
	return v, ok
}

// SetValues replaces the storage of a value property with vals, adopting T as
// the memory type. len(vals) must match the owning element's row count.
func SetValues[T Scalar](p *Property, vals []T) error {
	if p.kind != Value {
		return schemaError("property '%s' is a list property", p.name)
	}
	if err := p.checkRows(len(vals)); err != nil {
		return err
	}
	p.memType, p.data, p.rows = TypeOf[T](), vals, len(vals)
	return nil
}

// SetLists replaces the storage of a list property with rows, adopting T as the
// memory type. len(rows) must match the owning element's row count.
func SetLists[T Scalar](p *Property, rows [][]T) error {
	if p.kind != List {
		return schemaError("property '%s' is a value property", p.name)
	}
	if err := p.checkRows(len(rows)); err != nil {
		return err
	}
	p.memType, p.data, p.rows = TypeOf[T](), rows, len(rows)
	return nil
}

func (p *Property) checkRows(n int) error {
	if p.parent != nil && p.parent.rows != n {
		return schemaError("property '%s' got %d rows, element '%s' has %d",
			p.name, n, p.parent.name, p.parent.rows)
	}
	return nil
}
