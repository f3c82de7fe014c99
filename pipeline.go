package sourcehold

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/sourcehold/document"
	"github.com/bodgit/sourcehold/element"
	"github.com/bodgit/sourcehold/layout"
	"github.com/bodgit/sourcehold/palette"
)

const workers = 10

func (c *Converter) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if c.layout.Extension != "" && !strings.EqualFold(filepath.Ext(file), c.layout.Extension) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) fileWorker(ctx context.Context, in <-chan string, fn func(string) error) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := fn(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error from any stage, cancelling the
// remaining stages when one fails.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range merge(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func merge[T any](cs ...<-chan T) <-chan T {
	var wg sync.WaitGroup
	out := make(chan T, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan T) {
			defer wg.Done()
			for v := range c {
				out <- v
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (c *Converter) walk(path string, fn func(base, file string) error) error {
	base, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findFiles(ctx, base)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := c.fileWorker(ctx, files, func(file string) error {
			return fn(base, file)
		})
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(cancelFunc, errcList...)
}

func distinct(rows [][]element.Cell) (int, int, error) {
	p, err := palette.FromRows(rows, nil)
	if err != nil {
		return 0, 0, err
	}
	cells := 0
	for _, row := range rows {
		cells += len(row)
	}
	return cells, p.Len(), nil
}

// Stats summarises each section of a decoded document.
func Stats(d *document.Document) ([]SectionStats, error) {
	stats := make([]SectionStats, 0, len(d.Sections))
	for _, s := range d.Sections {
		st := SectionStats{
			Name: s.Name,
			Kind: string(s.Kind),
		}

		var err error
		switch s.Kind {
		case layout.Diamond:
			st.Cells, st.Distinct, err = distinct(s.Grid)
		case layout.Scope:
			st.Cells, st.Distinct, err = distinct(s.Scopes)
		default:
			st.Cells = len(s.Raw) / 2
		}
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// Scan decodes every file under path carrying the layout's extension and
// records it in cat. Files that fail to decode are logged and skipped.
func (c *Converter) Scan(path string, cat *Catalog) error {
	return c.walk(path, func(_, file string) error {
		b, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		d, err := c.Decode(b)
		if err != nil {
			c.logger.Printf("Unable to decode \"%s\": %s\n", file, err)
			return nil
		}

		stats, err := Stats(d)
		if err != nil {
			return err
		}

		sum := sha1.Sum(b)
		if err := cat.AddFile(file, hex.EncodeToString(sum[:]), int64(len(b)), c.layout.Name, stats); err != nil {
			return err
		}
		c.logger.Printf("Cataloged \"%s\"\n", file)

		return nil
	})
}

// ConvertDir decodes every file under in carrying the layout's extension
// and writes its canonical text to the same relative path under out with
// a .json extension.
func (c *Converter) ConvertDir(in, out string, o document.Options) error {
	return c.walk(in, func(base, file string) error {
		rel, err := filepath.Rel(base, file)
		if err != nil {
			return err
		}

		b, err := c.DecodeFile(file, o)
		if err != nil {
			return err
		}

		target := filepath.Join(out, strings.TrimSuffix(rel, filepath.Ext(rel))+".json")
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, b, 0o644); err != nil {
			return err
		}
		c.logger.Printf("Wrote \"%s\"\n", target)

		return nil
	})
}
