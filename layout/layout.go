/*
Package layout describes how a container file is cut into sections and how
each section is decoded.

A layout is read from YAML:

	name: example
	extension: .aiv
	sections:
	  - name: header
	    kind: raw
	    size: 16
	  - name: heights
	    kind: diamond
	    type: H
	    rows: 200
	  - name: rules
	    kind: scope
	    type: I
	    open: "ffffff01"
	    close: "ffffff02"

Sections are contiguous and in file order. Every section except the last
must have a known size: diamond sections derive theirs from the type and
row count, raw and scope sections declare it.
*/
package layout

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bodgit/sourcehold/cursor"
	"github.com/bodgit/sourcehold/diamond"
	"github.com/bodgit/sourcehold/element"
	"gopkg.in/yaml.v3"
)

// ErrInvalidLayout is returned for a layout that fails validation.
var ErrInvalidLayout = errors.New("layout: invalid layout")

// Kind selects how a section is decoded.
type Kind string

const (
	Raw     Kind = "raw"
	Diamond Kind = "diamond"
	Scope   Kind = "scope"
)

// Section describes one contiguous region of a container.
type Section struct {
	Name  string `yaml:"name"`
	Kind  Kind   `yaml:"kind"`
	Type  string `yaml:"type,omitempty"`
	Rows  int    `yaml:"rows,omitempty"`
	Open  string `yaml:"open,omitempty"`
	Close string `yaml:"close,omitempty"`
	Size  int    `yaml:"size,omitempty"`

	descriptor  element.Descriptor
	open, close []byte
}

// Descriptor returns the parsed element descriptor.
func (s *Section) Descriptor() element.Descriptor {
	return s.descriptor
}

// Markers returns the decoded open and close markers of a scope section.
func (s *Section) Markers() ([]byte, []byte) {
	return s.open, s.close
}

// Layout is an ordered list of sections.
type Layout struct {
	Name      string    `yaml:"name"`
	Extension string    `yaml:"extension"`
	Sections  []Section `yaml:"sections"`
}

func invalid(s *Section, format string, a ...interface{}) error {
	return fmt.Errorf("%w: section %q: %s", ErrInvalidLayout, s.Name, fmt.Sprintf(format, a...))
}

func marker(s *Section, field, v string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(v, " ", ""))
	if err != nil {
		return nil, invalid(s, "%s marker: %v", field, err)
	}
	if len(b) == 0 {
		return nil, invalid(s, "empty %s marker", field)
	}
	return b, nil
}

func (s *Section) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: unnamed section", ErrInvalidLayout)
	}
	if s.Size < 0 {
		return invalid(s, "negative size")
	}

	switch s.Kind {
	case Raw:
		return nil
	case Diamond, Scope:
	default:
		return invalid(s, "unknown kind %q", s.Kind)
	}

	d, err := element.Parse(s.Type)
	if err != nil {
		return invalid(s, "%v", err)
	}
	s.descriptor = d

	if s.Kind == Diamond {
		size, err := diamond.Size(d, s.Rows)
		if err != nil {
			return invalid(s, "%v", err)
		}
		if s.Size != 0 && s.Size != size {
			return invalid(s, "size %d does not match framing size %d", s.Size, size)
		}
		s.Size = size
		return nil
	}

	if s.open, err = marker(s, "open", s.Open); err != nil {
		return err
	}
	if s.close, err = marker(s, "close", s.Close); err != nil {
		return err
	}
	if string(s.open) == string(s.close) {
		return invalid(s, "open and close markers are identical")
	}
	return nil
}

// Validate checks every section, parsing type tokens and markers eagerly.
func (l *Layout) Validate() error {
	if len(l.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidLayout)
	}
	names := make(map[string]struct{})
	for i := range l.Sections {
		s := &l.Sections[i]
		if err := s.validate(); err != nil {
			return err
		}
		if _, ok := names[s.Name]; ok {
			return invalid(s, "duplicate name")
		}
		names[s.Name] = struct{}{}
		if s.Size == 0 && i != len(l.Sections)-1 {
			return invalid(s, "only the last section may omit its size")
		}
	}
	return nil
}

// Section returns the named section.
func (l *Layout) Section(name string) (*Section, bool) {
	for i := range l.Sections {
		if l.Sections[i].Name == name {
			return &l.Sections[i], true
		}
	}
	return nil, false
}

// Parse reads and validates a YAML layout.
func Parse(b []byte) (*Layout, error) {
	l := new(Layout)
	if err := yaml.Unmarshal(b, l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads and validates a YAML layout file.
func Load(file string) (*Layout, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Split cuts b into one slice per section. The slices alias b.
func (l *Layout) Split(b []byte) ([][]byte, error) {
	c := cursor.New(b)
	parts := make([][]byte, len(l.Sections))
	for i := range l.Sections {
		s := &l.Sections[i]
		n := s.Size
		if n == 0 {
			n = c.Remaining()
		}
		p, err := c.Read(n)
		if err != nil {
			return nil, fmt.Errorf("layout: section %q: %w", s.Name, err)
		}
		parts[i] = p
	}
	if n := c.Remaining(); n != 0 {
		return nil, &cursor.OffsetError{
			Offset: c.Offset(),
			Err:    fmt.Errorf("%w: %d bytes after the last section", diamond.ErrTrailingData, n),
		}
	}
	return parts, nil
}

// Marshal encodes the layout back to YAML.
func (l *Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}
