package core

import "strings"

// HeaderIndex maps normalized header names to their position in a row.
type HeaderIndex map[string]int

// NormalizeHeader lower-cases and trims a header cell and joins inner
// spaces with underscores: " Business Name " -> "business_name".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(CleanCell(h)))
	return strings.Join(strings.Fields(h), "_")
}

// Binding pairs an upload's header row with a schema.
type Binding struct {
	Schema  *RecordSchema
	Headers []string    // normalized, in file order
	Index   HeaderIndex // declared field name -> column position
	Ignored []string    // headers not declared by the schema
}

// BindHeaders validates the header row against schema for op.
//
// Every required header must be present. Headers that are not declared
// fields fail the upload when the schema rejects unknown headers and are
// otherwise ignored.
func BindHeaders(header RawRow, schema *RecordSchema, op Operation) (*Binding, error) {
	b := &Binding{
		Schema:  schema,
		Headers: make([]string, 0, len(header.Cells)),
		Index:   make(HeaderIndex, len(header.Cells)),
	}

	for pos, cell := range header.Cells {
		name := NormalizeHeader(cell)
		if name == "" {
			continue
		}
		b.Headers = append(b.Headers, name)

		if _, ok := schema.Field(name); !ok {
			b.Ignored = append(b.Ignored, name)
			continue
		}
		if _, dup := b.Index[name]; !dup {
			b.Index[name] = pos
		}
	}

	var missing []string
	for _, name := range schema.RequiredHeaders(op) {
		if _, ok := b.Index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errMissingHeaders(missing, b.Headers)
	}

	if schema.RejectUnknownHeaders && len(b.Ignored) > 0 {
		return nil, errUnknownHeaders(b.Ignored)
	}

	return b, nil
}

// Bind pairs a data row with the bound field names. Short rows bind the
// missing trailing fields as empty strings.
func (b *Binding) Bind(row RawRow) BoundRow {
	values := make(map[string]string, len(b.Index))
	for name, pos := range b.Index {
		if pos < len(row.Cells) {
			values[name] = row.Cells[pos]
		} else {
			values[name] = ""
		}
	}
	return BoundRow{Row: row.Line, Values: values}
}

// Has reports whether field was present in the header row.
func (b *Binding) Has(field string) bool {
	_, ok := b.Index[field]
	return ok
}
