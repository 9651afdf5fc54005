package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/logging"
	"github.com/colonyops/wiz/internal/core/rgb"
	"github.com/colonyops/wiz/internal/core/sampler"
	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/internal/printer"
	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/iojson"
)

const defaultExtractWorkers = 4

type ExtractCmd struct {
	flags *Flags
	app   *wiz.App

	workers    int
	jsonOutput bool
}

// NewExtractCmd creates a new extract command
func NewExtractCmd(flags *Flags, app *wiz.App) *ExtractCmd {
	return &ExtractCmd{flags: flags, app: app}
}

// Register adds the extract command to the application
func (cmd *ExtractCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "extract",
		Usage:     "Extract dominant colours from images",
		UsageText: "wiz extract <image>... [--workers n] [--json]",
		Description: `Downscales each image, buckets its opaque pixels and ranks the most common
colours. Near-white and near-black pixels are skipped. Each candidate is
matched against the palette.

Images are processed concurrently; results are printed in argument order.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "workers",
				Usage:       "number of images decoded at once",
				Value:       defaultExtractWorkers,
				Destination: &cmd.workers,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type extractOutput struct {
	Path       string              `json:"path"`
	Extraction sampler.Extraction  `json:"extraction"`
	Matches    []colormatch.Result `json:"matches,omitempty"`
	Error      string              `json:"error,omitempty"`
	err        error
}

// extractAll runs extraction for every path with at most workers in flight.
// Per-image failures are recorded on the output; only cancellation aborts.
func extractAll(ctx context.Context, fs afero.Fs, m *colormatch.Matcher, paths []string, p sampler.Policy, workers int) ([]extractOutput, error) {
	log := logging.Component("extract")
	out := make([]extractOutput, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res := extractOutput{Path: path}
			ext, err := sampler.ExtractFile(fs, path, p)
			if err != nil {
				log.Debug().Err(err).Str("path", path).Msg("extract failed")
				res.err = err
				res.Error = err.Error()
				out[i] = res
				return nil
			}

			res.Extraction = ext
			for _, hex := range ext.Candidates {
				c, err := rgb.ParseHex(hex)
				if err != nil {
					continue
				}
				if match, err := m.Match(c); err == nil {
					res.Matches = append(res.Matches, match)
				}
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (cmd *ExtractCmd) run(ctx context.Context, c *cli.Command) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("at least one image is required")
	}

	results, err := extractAll(ctx, cmd.app.Fs, cmd.app.Matcher, paths, cmd.app.Config.Sampling, cmd.workers)
	if err != nil {
		return err
	}

	failed := 0
	out := c.Root().Writer
	p := printer.Ctx(ctx)
	for _, r := range results {
		if r.err != nil {
			failed++
		}
		if cmd.jsonOutput {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode extraction: %w", err)
			}
			continue
		}
		if r.err != nil {
			p.Errorf("%s: %v", r.Path, r.err)
			continue
		}
		_, _ = fmt.Fprintln(out, r.Path)
		if r.Extraction.Empty() {
			_, _ = fmt.Fprintln(out, "  no colours found")
			continue
		}
		for i, hex := range r.Extraction.Candidates {
			line := fmt.Sprintf("  %s %s  %4d px", styles.Swatch(hex), hex, r.Extraction.Counts[i])
			if i < len(r.Matches) {
				line += fmt.Sprintf("  %s %s (%s)", r.Matches[i].Entry.Code, r.Matches[i].Entry.Name, r.Matches[i].Tier.Label())
			}
			_, _ = fmt.Fprintln(out, strings.TrimRight(line, " "))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d image(s) failed", failed, len(results))
	}
	return nil
}
