/*
Package document implements the canonical textual form of a decoded
container.

A Document is written as JSON with sorted keys, two space indentation and
short arrays kept on a single line, so the same document always produces
byte-identical text and diffs line by line. Diamond grids are written one
row per line where the row fits.
*/
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bodgit/sourcehold/diamond"
	"github.com/bodgit/sourcehold/element"
	"github.com/bodgit/sourcehold/layout"
	"github.com/tidwall/pretty"
)

// Cell is one grid cell in the sparse form written when placeholder cells
// are omitted.
type Cell struct {
	Row   int          `json:"row"`
	Col   int          `json:"col"`
	Value element.Cell `json:"value"`
}

// Section is the decoded content of one layout section. Exactly one of
// Grid, Cells, Scopes or Raw is used depending on Kind.
type Section struct {
	Name   string           `json:"name"`
	Kind   layout.Kind      `json:"kind"`
	Type   string           `json:"type,omitempty"`
	Rows   int              `json:"rows,omitempty"`
	Marker string           `json:"marker,omitempty"`
	Open   string           `json:"open,omitempty"`
	Close  string           `json:"close,omitempty"`
	Grid   diamond.Grid     `json:"grid,omitempty"`
	Cells  []Cell           `json:"cells,omitempty"`
	Scopes [][]element.Cell `json:"scopes,omitempty"`
	Raw    string           `json:"raw,omitempty"`
}

// Document is a decoded container.
type Document struct {
	Layout    string    `json:"layout,omitempty"`
	Transform *Options  `json:"transform,omitempty"`
	Sections  []Section `json:"sections"`
}

// Section returns the named section.
func (d *Document) Section(name string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

var prettyOptions = &pretty.Options{
	Width:    4096,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: true,
}

// Marshal returns the canonical text of d.
func Marshal(d *Document) ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	b = pretty.PrettyOptions(b, prettyOptions)
	if !bytes.HasSuffix(b, []byte{'\n'}) {
		b = append(b, '\n')
	}
	return b, nil
}

// Unmarshal parses text produced by Marshal or edited by hand. Unknown
// fields are rejected.
func Unmarshal(b []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	d := new(Document)
	if err := dec.Decode(d); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return d, nil
}

// Canonical re-formats a document into its canonical text.
func Canonical(b []byte) ([]byte, error) {
	d, err := Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return Marshal(d)
}
