package ply

// Element is a named set of rows sharing an ordered list of properties
type Element struct {
	name      string
	rows      int
	props     []*Property
	index     map[string]int
	parent    *File
	allocated bool
}

// NewElement creates an unattached element with the given row count
func NewElement(name string, rows int) *Element {
	return &Element{name: name, rows: rows, index: make(map[string]int)}
}

func (el *Element) Name() string    { return el.name }
func (el *Element) Len() int        { return el.rows }
func (el *Element) Parent() *File   { return el.parent }
func (el *Element) Allocated() bool { return el.allocated }

// NumProperties returns the number of properties
func (el *Element) NumProperties() int {
	return len(el.props)
}

// SetLen changes the row count. Properties holding data are resized, the
// others only record the count.
func (el *Element) SetLen(n int) {
	for _, p := range el.props {
		p.Resize(n)
	}
	el.rows = n
}

// PropertyAt returns the property at position i
func (el *Element) PropertyAt(i int) *Property {
	return el.props[i]
}

// Property returns the property called name, or nil
func (el *Element) Property(name string) *Property {
	if i, ok := el.index[name]; ok {
		return el.props[i]
	}
	return nil
}

// Properties returns the properties in declaration order
func (el *Element) Properties() []*Property {
	return el.props
}

// PropertyNames returns the property names in declaration order
func (el *Element) PropertyNames() []string {
	names := make([]string, len(el.props))
	for i, p := range el.props {
		names[i] = p.name
	}
	return names
}

func (el *Element) HasProperty(name string) bool {
	_, ok := el.index[name]
	return ok
}

// CreateValue adds a value property. An Invalid mem type defaults to file.
func (el *Element) CreateValue(name string, file, mem Type) (*Property, error) {
	if !file.Valid() {
		return nil, schemaError("property '%s' has an invalid file type", name)
	}
	p := NewValueProperty(name, file, mem)
	if err := el.Attach(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateList adds a list property. The size type must be an integer type.
func (el *Element) CreateList(name string, size, file, mem Type) (*Property, error) {
	if !size.Valid() || size.IsFloat() {
		return nil, schemaError("type '%s' cannot hold the size of list '%s'", size, name)
	}
	if !file.Valid() {
		return nil, schemaError("property '%s' has an invalid file type", name)
	}
	p := NewListProperty(name, size, file, mem)
	if err := el.Attach(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Attach makes el the owner of p, detaching it from any previous element
func (el *Element) Attach(p *Property) error {
	if p.parent == el {
		return nil
	}
	if el.HasProperty(p.name) {
		return schemaError("there is already a property called '%s' in the element '%s'", p.name, el.name)
	}
	if p.parent != nil {
		p.parent.remove(p.name)
	}
	el.index[p.name] = len(el.props)
	el.props = append(el.props, p)
	p.setParent(el)
	if el.allocated && !p.Allocated() {
		p.Allocate(el.rows)
	}
	return nil
}

// Detach removes p from el without destroying it
func (el *Element) Detach(p *Property) error {
	if p.parent != el {
		return schemaError("property '%s' does not belong to element '%s'", p.name, el.name)
	}
	el.remove(p.name)
	return nil
}

// DetachNamed removes the property called name and returns it
func (el *Element) DetachNamed(name string) (*Property, error) {
	p := el.Property(name)
	if p == nil {
		return nil, schemaError("no property named '%s' in element '%s'", name, el.name)
	}
	el.remove(name)
	return p, nil
}

// Rename changes the name, failing if the owning file already has an element by that name
func (el *Element) Rename(name string) error {
	if name == el.name {
		return nil
	}
	if el.parent != nil {
		if el.parent.HasElement(name) {
			return schemaError("there is already an element called '%s'", name)
		}
		el.parent.renameElement(el.name, name)
	}
	el.name = name
	return nil
}

// Allocate sizes the storage of every property to the row count
func (el *Element) Allocate() {
	for _, p := range el.props {
		p.Allocate(el.rows)
	}
	el.allocated = true
}

// Clear drops every property and resets the row count
func (el *Element) Clear() {
	for _, p := range el.props {
		p.setParent(nil)
	}
	el.props = nil
	el.index = make(map[string]int)
	el.rows = 0
	el.allocated = false
}

func (el *Element) remove(name string) {
	i := el.index[name]
	el.props[i].setParent(nil)
	el.props = append(el.props[:i], el.props[i+1:]...)
	el.reindex()
}

func (el *Element) renameProperty(old, name string) {
	el.index[name] = el.index[old]
	delete(el.index, old)
}

func (el *Element) reindex() {
	el.index = make(map[string]int, len(el.props))
	for i, p := range el.props {
		el.index[p.name] = i
	}
}

func (el *Element) setParent(f *File) {
	el.parent = f
}
