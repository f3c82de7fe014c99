/*
Package sourcehold converts the sectioned binary map and script files of
the Stronghold games to and from an editable canonical text form.

A layout names the sections of a container and how each is decoded: framed
diamond grids, bracket delimited scopes of packed integers or opaque raw
bytes. The Converter applies a layout to whole files, records what it finds
in a Catalog and walks directories of files.
*/
package sourcehold

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/bodgit/sourcehold/diamond"
	"github.com/bodgit/sourcehold/document"
	"github.com/bodgit/sourcehold/element"
	"github.com/bodgit/sourcehold/layout"
	"github.com/bodgit/sourcehold/scope"
)

var (
	errSectionSize    = errors.New("sourcehold: encoded section does not match layout size")
	errLayoutMismatch = errors.New("sourcehold: document does not match layout")
)

// Converter decodes and encodes containers described by a layout.
type Converter struct {
	layout *layout.Layout
	logger *log.Logger
}

// New returns a Converter for containers described by l.
func New(l *layout.Layout, logger *log.Logger) *Converter {
	return &Converter{
		layout: l,
		logger: logger,
	}
}

// Layout returns the layout in use.
func (c *Converter) Layout() *layout.Layout {
	return c.layout
}

func (c *Converter) decodeDiamond(s *layout.Section, b []byte) (document.Section, error) {
	var header []byte
	markers := make(map[string]struct{})
	hook := func(f diamond.Frame, row int, m []byte) {
		if f == diamond.Header {
			header = append([]byte(nil), m...)
		}
		if _, ok := markers[string(m)]; !ok {
			markers[string(m)] = struct{}{}
			c.logger.Printf("Section %q: %s marker %X at row %d\n", s.Name, f, m, row)
		}
	}

	g, err := diamond.DecodeHook(b, s.Descriptor(), s.Rows, hook)
	if err != nil {
		return document.Section{}, err
	}
	if len(markers) > 1 {
		c.logger.Printf("Section %q: %d distinct frame markers, only the header is kept\n", s.Name, len(markers))
	}

	return document.Section{
		Name:   s.Name,
		Kind:   s.Kind,
		Type:   s.Descriptor().String(),
		Rows:   s.Rows,
		Marker: hex.EncodeToString(header),
		Grid:   g,
	}, nil
}

func (c *Converter) decodeScope(s *layout.Section, b []byte) (document.Section, error) {
	open, close := s.Markers()
	seqs, err := scope.Parse(b, open, close, s.Descriptor())
	if err != nil {
		return document.Section{}, err
	}

	scopes := make([][]element.Cell, len(seqs))
	for i, seq := range seqs {
		scopes[i] = seq.Values
	}
	c.logger.Printf("Section %q: %d scopes\n", s.Name, len(scopes))

	return document.Section{
		Name:   s.Name,
		Kind:   s.Kind,
		Type:   s.Descriptor().String(),
		Open:   hex.EncodeToString(open),
		Close:  hex.EncodeToString(close),
		Scopes: scopes,
	}, nil
}

// Decode cuts b into the layout's sections and decodes each of them.
func (c *Converter) Decode(b []byte) (*document.Document, error) {
	parts, err := c.layout.Split(b)
	if err != nil {
		return nil, err
	}

	d := &document.Document{
		Layout:   c.layout.Name,
		Sections: make([]document.Section, 0, len(parts)),
	}
	for i, part := range parts {
		s := &c.layout.Sections[i]

		var ds document.Section
		switch s.Kind {
		case layout.Diamond:
			ds, err = c.decodeDiamond(s, part)
		case layout.Scope:
			ds, err = c.decodeScope(s, part)
		default:
			ds = document.Section{
				Name: s.Name,
				Kind: s.Kind,
				Raw:  hex.EncodeToString(part),
			}
		}
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", s.Name, err)
		}
		d.Sections = append(d.Sections, ds)
	}

	return d, nil
}

func decodeHex(field, v string) ([]byte, error) {
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}

func encodeSection(w *bytes.Buffer, s *document.Section) error {
	if s.Kind == layout.Raw {
		b, err := decodeHex("raw", s.Raw)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}

	d, err := element.Parse(s.Type)
	if err != nil {
		return err
	}

	switch s.Kind {
	case layout.Diamond:
		marker, err := decodeHex("marker", s.Marker)
		if err != nil {
			return err
		}
		if len(marker) == 0 {
			marker = nil
		}
		if rows := s.Grid.Rows(); rows != s.Rows {
			return fmt.Errorf("grid has %d framing rows, section declares %d", rows, s.Rows)
		}
		return diamond.Encode(w, s.Grid, d, marker)
	case layout.Scope:
		open, err := decodeHex("open", s.Open)
		if err != nil {
			return err
		}
		close, err := decodeHex("close", s.Close)
		if err != nil {
			return err
		}
		seqs := make([]scope.Sequence, len(s.Scopes))
		for i, v := range s.Scopes {
			seqs[i] = scope.Sequence{Order: i, Depth: 1, Values: v}
		}
		return scope.Encode(w, seqs, open, close, d)
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
}

func (c *Converter) checkSection(ls *layout.Section, s *document.Section) error {
	if s.Name != ls.Name || s.Kind != ls.Kind {
		return fmt.Errorf("%w: section %q (%s) where layout has %q (%s)", errLayoutMismatch, s.Name, s.Kind, ls.Name, ls.Kind)
	}
	if s.Kind == layout.Raw {
		return nil
	}

	d, err := element.Parse(s.Type)
	if err != nil {
		return fmt.Errorf("section %q: %w", s.Name, err)
	}
	if d != ls.Descriptor() {
		return fmt.Errorf("%w: section %q has type %s, want %s", errLayoutMismatch, s.Name, d, ls.Descriptor())
	}

	switch s.Kind {
	case layout.Diamond:
		if s.Rows != ls.Rows {
			return fmt.Errorf("%w: section %q has %d rows, want %d", errLayoutMismatch, s.Name, s.Rows, ls.Rows)
		}
	case layout.Scope:
		open, close := ls.Markers()
		so, err := hex.DecodeString(s.Open)
		if err != nil {
			return fmt.Errorf("section %q: open: %w", s.Name, err)
		}
		sc, err := hex.DecodeString(s.Close)
		if err != nil {
			return fmt.Errorf("section %q: close: %w", s.Name, err)
		}
		if !bytes.Equal(so, open) || !bytes.Equal(sc, close) {
			return fmt.Errorf("%w: section %q has markers %x/%x, want %x/%x", errLayoutMismatch, s.Name, so, sc, open, close)
		}
	}
	return nil
}

// check verifies that d has the layout's sections in order with the same
// types, row counts and markers.
func (c *Converter) check(d *document.Document) error {
	if d.Layout != "" && d.Layout != c.layout.Name {
		return fmt.Errorf("%w: document is for layout %q, not %q", errLayoutMismatch, d.Layout, c.layout.Name)
	}
	if len(d.Sections) != len(c.layout.Sections) {
		return fmt.Errorf("%w: %d sections, want %d", errLayoutMismatch, len(d.Sections), len(c.layout.Sections))
	}
	for i := range d.Sections {
		if err := c.checkSection(&c.layout.Sections[i], &d.Sections[i]); err != nil {
			return err
		}
	}
	return nil
}

// Encode reverts any recorded transform and encodes every section of d in
// order. The sections must match the layout's, and sections the layout
// gives a fixed size must encode to exactly that size.
func (c *Converter) Encode(d *document.Document) ([]byte, error) {
	if err := c.check(d); err != nil {
		return nil, err
	}

	d, err := document.Revert(d)
	if err != nil {
		return nil, err
	}

	b := new(bytes.Buffer)
	for i := range d.Sections {
		s := &d.Sections[i]
		start := b.Len()
		if err := encodeSection(b, s); err != nil {
			return nil, fmt.Errorf("section %q: %w", s.Name, err)
		}
		if ls, ok := c.layout.Section(s.Name); ok && ls.Size != 0 && b.Len()-start != ls.Size {
			return nil, fmt.Errorf("%w: section %q is %d bytes, want %d", errSectionSize, s.Name, b.Len()-start, ls.Size)
		}
	}
	c.logger.Printf("Encoded %d sections, %d bytes\n", len(d.Sections), b.Len())

	return b.Bytes(), nil
}

// Verify decodes b and compares its canonical text against a reference
// text document.
func (c *Converter) Verify(b, reference []byte) (*document.Report, error) {
	d, err := c.Decode(b)
	if err != nil {
		return nil, err
	}
	got, err := document.Marshal(d)
	if err != nil {
		return nil, err
	}
	return document.Verify(got, reference)
}

// DecodeFile decodes a container file and returns its canonical text with
// o applied.
func (c *Converter) DecodeFile(file string, o document.Options) ([]byte, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	d, err := c.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if d, err = document.Apply(d, o); err != nil {
		return nil, err
	}
	return document.Marshal(d)
}

// EncodeFile reads a text document and returns the encoded container.
func (c *Converter) EncodeFile(file string) ([]byte, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	d, err := document.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return c.Encode(d)
}
