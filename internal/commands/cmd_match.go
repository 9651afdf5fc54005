package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/colormatch"
	"github.com/colonyops/wiz/internal/core/rgb"
	"github.com/colonyops/wiz/internal/core/styles"
	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/iojson"
)

type MatchCmd struct {
	flags *Flags
	app   *wiz.App

	jsonOutput bool
}

// NewMatchCmd creates a new match command
func NewMatchCmd(flags *Flags, app *wiz.App) *MatchCmd {
	return &MatchCmd{flags: flags, app: app}
}

// Register adds the match command to the application
func (cmd *MatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "match",
		Usage:     "Match colours against the palette",
		UsageText: "wiz match <colour>... [--json]",
		Description: `Finds the nearest palette entry for each colour and grades the match.

Colours may be hex ("#1f3a93"), an r,g,b triple ("31,58,147") or a palette
code, which is looked up directly and reported as an exact manual match.`,
		Flags: []cli.Flag{
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

type matchOutput struct {
	Input  string            `json:"input"`
	Hex    string            `json:"hex"`
	Result colormatch.Result `json:"result"`
}

func (cmd *MatchCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one colour is required")
	}

	results := make([]matchOutput, 0, c.Args().Len())
	for _, arg := range c.Args().Slice() {
		in, err := colormatch.ParseInput(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		res, col, err := cmd.app.Matcher.Resolve(in)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		results = append(results, matchOutput{Input: arg, Hex: col.Hex(), Result: res})
	}

	return writeMatches(c, results, cmd.jsonOutput)
}

func writeMatches(c *cli.Command, results []matchOutput, jsonOutput bool) error {
	out := c.Root().Writer
	if jsonOutput {
		for _, r := range results {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode match: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INPUT\t\tMATCH\tNAME\tDISTANCE\tQUALITY")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%.1f\t%s\n",
			r.Input,
			styles.Swatch(r.Hex), styles.Swatch(r.Result.Entry.Hex),
			r.Result.Entry.Code, r.Result.Entry.Name,
			r.Result.Distance, r.Result.Tier.Label())
	}
	return w.Flush()
}

// matchColor matches one sampled colour.
func matchColor(m *colormatch.Matcher, label string, c rgb.RGB) (matchOutput, error) {
	res, err := m.Match(c)
	if err != nil {
		return matchOutput{}, err
	}
	return matchOutput{Input: label, Hex: c.Hex(), Result: res}, nil
}
