package document

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Mismatch is a line that differs between two texts. Line is 1-based.
type Mismatch struct {
	Line int
	Got  string
	Want string
}

// Report is the result of comparing a text against a reference.
type Report struct {
	Mismatches []Mismatch
	GotLines   int
	WantLines  int
}

// OK reports whether the texts are identical.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && r.GotLines == r.WantLines
}

func lines(b []byte) []string {
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

// Compare compares got and want line by line over their common length.
func Compare(got, want []byte) *Report {
	g, w := lines(got), lines(want)
	r := &Report{GotLines: len(g), WantLines: len(w)}
	for i := 0; i < len(g) && i < len(w); i++ {
		if g[i] != w[i] {
			r.Mismatches = append(r.Mismatches, Mismatch{Line: i + 1, Got: g[i], Want: w[i]})
		}
	}
	return r
}

// Verify compares the canonical text got against a reference document,
// which is canonicalised first so formatting differences are ignored.
func Verify(got, reference []byte) (*Report, error) {
	want, err := Canonical(reference)
	if err != nil {
		return nil, err
	}
	return Compare(got, want), nil
}

// UnifiedDiff renders the differences between got and want.
func UnifiedDiff(got, want []byte, gotName, wantName string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(string(got)),
		FromFile: wantName,
		ToFile:   gotName,
		Context:  3,
	})
}
