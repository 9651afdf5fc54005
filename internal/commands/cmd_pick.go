package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/wiz/internal/core/sampler"
	"github.com/colonyops/wiz/internal/wiz"
)

type PickCmd struct {
	flags *Flags
	app   *wiz.App

	x, y          float64
	width, height float64
	jsonOutput    bool
}

// NewPickCmd creates a new pick command
func NewPickCmd(flags *Flags, app *wiz.App) *PickCmd {
	return &PickCmd{flags: flags, app: app}
}

// Register adds the pick command to the application
func (cmd *PickCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "pick",
		Usage:     "Sample the colour under a point of an image",
		UsageText: "wiz pick <image> --x 120 --y 40 [--width 400 --height 300] [--json]",
		Description: `Reads the pixel under a point and matches it against the palette.

--width and --height give the size the image was displayed at; the point is
scaled to the image's natural size. They default to the natural size.`,
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "x", Usage: "x coordinate on the displayed image", Destination: &cmd.x},
			&cli.FloatFlag{Name: "y", Usage: "y coordinate on the displayed image", Destination: &cmd.y},
			&cli.FloatFlag{Name: "width", Usage: "displayed width", Destination: &cmd.width},
			&cli.FloatFlag{Name: "height", Usage: "displayed height", Destination: &cmd.height},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PickCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("image path is required")
	}

	img, err := sampler.DecodeFile(cmd.app.Fs, path)
	if err != nil {
		return err
	}

	displayed := sampler.Size{W: cmd.width, H: cmd.height}
	if displayed.W == 0 && displayed.H == 0 {
		b := img.Bounds()
		displayed = sampler.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	}

	picked, err := sampler.PointPick(img, sampler.Point{X: cmd.x, Y: cmd.y}, displayed)
	if err != nil {
		return err
	}

	res, err := matchColor(cmd.app.Matcher, fmt.Sprintf("%g,%g", cmd.x, cmd.y), picked)
	if err != nil {
		return err
	}
	return writeMatches(c, []matchOutput{res}, cmd.jsonOutput)
}
