package ply

// Summary is a serializable description of a file's schema
type Summary struct {
	FileType string           `json:"file_type"`
	Format   string           `json:"format"`
	Version  string           `json:"version"`
	Comments []string         `json:"comments,omitempty"`
	Elements []ElementSummary `json:"elements"`
}

// ElementSummary describes one element
type ElementSummary struct {
	Name       string            `json:"name"`
	Rows       int               `json:"rows"`
	Properties []PropertySummary `json:"properties"`
}

// PropertySummary describes one property. SizeType is empty for value properties.
type PropertySummary struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	FileType string `json:"file_type"`
	MemType  string `json:"mem_type"`
	SizeType string `json:"size_type,omitempty"`
}

// Describe returns the schema of f
func Describe(f *File) Summary {
	s := Summary{
		FileType: f.FileType,
		Format:   f.Format.String(),
		Version:  f.Version,
		Comments: append([]string(nil), f.Comments...),
		Elements: make([]ElementSummary, 0, len(f.elements)),
	}
	for _, el := range f.elements {
		es := ElementSummary{Name: el.name, Rows: el.rows, Properties: make([]PropertySummary, 0, len(el.props))}
		for _, p := range el.props {
			ps := PropertySummary{
				Name:     p.name,
				Kind:     p.kind.String(),
				FileType: p.fileType.String(),
				MemType:  p.memType.String(),
			}
			if p.kind == List {
				ps.SizeType = p.sizeType.String()
			}
			es.Properties = append(es.Properties, ps)
		}
		s.Elements = append(s.Elements, es)
	}
	return s
}

// Rows returns the total number of rows over all elements
func (s Summary) Rows() int {
	n := 0
	for _, el := range s.Elements {
		n += el.Rows
	}
	return n
}
