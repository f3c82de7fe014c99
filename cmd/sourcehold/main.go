package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/sourcehold"
	"github.com/bodgit/sourcehold/coord"
	"github.com/bodgit/sourcehold/diamond"
	"github.com/bodgit/sourcehold/document"
	"github.com/bodgit/sourcehold/layout"
	"github.com/bodgit/sourcehold/palette"
	"github.com/bodgit/sourcehold/render"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultCatalog = "sourcehold.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	if file := c.String("log-file"); file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		if c.Bool("verbose") {
			logger.SetOutput(io.MultiWriter(os.Stderr, w))
		} else {
			logger.SetOutput(w)
		}
		logger.SetFlags(log.LstdFlags)
	}
	return logger
}

func newConverter(c *cli.Context) (*sourcehold.Converter, error) {
	file := c.String("layout")
	if file == "" {
		return nil, errors.New("no layout given, use --layout or SOURCEHOLD_LAYOUT")
	}
	l, err := layout.Load(file)
	if err != nil {
		return nil, err
	}
	return sourcehold.New(l, newLogger(c)), nil
}

func options(c *cli.Context) document.Options {
	o := document.Options{
		MirrorRows:    c.Bool("mirror-rows"),
		MirrorColumns: c.Bool("mirror-columns"),
	}
	if c.IsSet("omit") {
		omit := c.Int64("omit")
		o.Omit = &omit
	}
	return o
}

func output(file string, b []byte, stdout io.Writer) error {
	if file != "" && file != "-" {
		return os.WriteFile(file, b, 0o644)
	}
	_, err := stdout.Write(b)
	return err
}

func decodeGrid(conv *sourcehold.Converter, file, section string) (diamond.Grid, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	d, err := conv.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	for _, s := range d.Sections {
		if s.Kind != layout.Diamond || (section != "" && s.Name != section) {
			continue
		}
		return s.Grid, nil
	}
	if section != "" {
		return nil, fmt.Errorf("%s: no diamond section %q", file, section)
	}
	return nil, fmt.Errorf("%s: no diamond section", file)
}

func renderGrid(c *cli.Context, conv *sourcehold.Converter) error {
	g, err := decodeGrid(conv, c.Args().First(), c.String("section"))
	if err != nil {
		return err
	}

	var img image.Image
	if other := c.String("compare"); other != "" {
		h, err := decodeGrid(conv, other, c.String("section"))
		if err != nil {
			return err
		}
		if img, err = render.Compare(g, h); err != nil {
			return err
		}
	} else {
		p, err := palette.FromRows(g, nil)
		if err != nil {
			return err
		}

		switch c.String("mode") {
		case "checkerboard":
			img, err = render.Checkerboard(g, p)
		case "isometric":
			img, err = render.Isometric(g, coord.DefaultProjection(len(g)), p)
		default:
			err = fmt.Errorf("unknown render mode %q", c.String("mode"))
		}
		if err != nil {
			return err
		}
	}

	file := c.String("output")
	format := c.String("format")
	if format == "" {
		format = render.Format(file)
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := render.Encode(f, img, format); err != nil {
		return err
	}
	return f.Close()
}

func verify(got []byte, name, reference string, stderr io.Writer) error {
	ref, err := os.ReadFile(reference)
	if err != nil {
		return err
	}
	report, err := document.Verify(got, ref)
	if err != nil {
		return err
	}
	if report.OK() {
		return nil
	}

	want, err := document.Canonical(ref)
	if err != nil {
		return err
	}
	diff, err := document.UnifiedDiff(got, want, name, reference)
	if err != nil {
		return err
	}
	fmt.Fprint(stderr, diff)

	if len(report.Mismatches) == 0 {
		return fmt.Errorf("output has %d lines, reference has %d", report.GotLines, report.WantLines)
	}
	return fmt.Errorf("%d mismatched lines, first at line %d", len(report.Mismatches), report.Mismatches[0].Line)
}

// decode writes the canonical text of file before comparing it against
// reference, so a failed verification still leaves the output behind.
func decode(conv *sourcehold.Converter, file string, o document.Options, out, reference string, stdout, stderr io.Writer) error {
	b, err := conv.DecodeFile(file, o)
	if err != nil {
		return err
	}

	if err := output(out, b, stdout); err != nil {
		return err
	}

	if reference != "" {
		return verify(b, file, reference, stderr)
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "sourcehold"
	app.Usage = "Stronghold map and script conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "layout",
			Aliases: []string{"l"},
			EnvVars: []string{"SOURCEHOLD_LAYOUT"},
			Usage:   "path to layout `FILE`",
		},
		&cli.StringFlag{
			Name:    "catalog",
			EnvVars: []string{"SOURCEHOLD_CATALOG"},
			Value:   filepath.Join(cwd, defaultCatalog),
			Usage:   "path to catalog database",
		},
		&cli.StringFlag{
			Name:    "log-file",
			EnvVars: []string{"SOURCEHOLD_LOG_FILE"},
			Usage:   "also log to a rotated `FILE`",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write to `FILE` instead of standard output",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "decode",
			Usage:       "Decode a container to canonical text",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				outputFlag,
				&cli.BoolFlag{
					Name:  "mirror-rows",
					Usage: "reverse the order of diamond rows",
				},
				&cli.BoolFlag{
					Name:  "mirror-columns",
					Usage: "reverse the cells of each diamond row",
				},
				&cli.Int64Flag{
					Name:  "omit",
					Usage: "write diamond grids sparsely, leaving out cells of `VALUE`",
				},
				&cli.StringFlag{
					Name:  "verify",
					Usage: "compare the output against a reference text `FILE`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := decode(conv, c.Args().First(), options(c), c.String("output"), c.String("verify"), os.Stdout, os.Stderr); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "encode",
			Usage:       "Encode canonical text back to a container",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				outputFlag,
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := conv.EncodeFile(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := output(c.String("output"), b, os.Stdout); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "convert",
			Usage:       "Decode every container in a directory tree",
			Description: "",
			ArgsUsage:   "DIRECTORY OUTPUT",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "mirror-rows",
					Usage: "reverse the order of diamond rows",
				},
				&cli.BoolFlag{
					Name:  "mirror-columns",
					Usage: "reverse the cells of each diamond row",
				},
				&cli.Int64Flag{
					Name:  "omit",
					Usage: "write diamond grids sparsely, leaving out cells of `VALUE`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := conv.ConvertDir(c.Args().Get(0), c.Args().Get(1), options(c)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "render",
			Usage:       "Render a diamond section as an image",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "output",
					Aliases:  []string{"o"},
					Usage:    "write the image to `FILE`",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "section",
					Usage: "render the named section instead of the first diamond section",
				},
				&cli.StringFlag{
					Name:  "mode",
					Value: "checkerboard",
					Usage: "checkerboard or isometric",
				},
				&cli.StringFlag{
					Name:  "compare",
					Usage: "highlight tiles that differ from another container `FILE`",
				},
				&cli.StringFlag{
					Name:  "format",
					Usage: "png, gif or bmp, defaults to the output extension",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := renderGrid(c, conv); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan a directory tree and record every container in the catalog",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				conv, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				cat, err := sourcehold.NewCatalog(c.String("catalog"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer cat.Close()

				if err := conv.Scan(c.Args().First(), cat); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "layout",
			Usage:       "Validate a layout and print it with derived section sizes",
			Description: "",
			Action: func(c *cli.Context) error {
				conv, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := conv.Layout().Marshal()
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				os.Stdout.Write(b)

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
