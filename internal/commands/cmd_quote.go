package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	quoteaction "github.com/colonyops/wiz/internal/actions/quote"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/quote"
	"github.com/colonyops/wiz/internal/printer"
	"github.com/colonyops/wiz/internal/wiz"
	"github.com/colonyops/wiz/pkg/iojson"
)

type QuoteCmd struct {
	flags *Flags
	app   *wiz.App

	input      iojson.FileReader[quoteInput]
	save       bool
	jsonOutput bool
}

// NewQuoteCmd creates a new quote command
func NewQuoteCmd(flags *Flags, app *wiz.App) *QuoteCmd {
	return &QuoteCmd{flags: flags, app: app}
}

// Register adds the quote command to the application
func (cmd *QuoteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "quote",
		Usage:     "Price a quote from JSON line items",
		UsageText: "wiz quote [-f quote.json] [--save] [--json]",
		Description: `Reads a quote as JSON from a file or stdin and prints totals and the margin
guardrail check. Input format:

  {
    "organization_name": "Northside FC",
    "margin_type": "event",
    "discount": 25,
    "items": [{"name": "Tee", "quantity": 40, "unit_cost": 4.1, "unit_price": 11}]
  }

--save stores the quote and prints its code.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.BoolFlag{
				Name:        "save",
				Usage:       "persist the quote",
				Destination: &cmd.save,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type quoteInput struct {
	OrganizationName string           `json:"organization_name"`
	MarginType       quote.MarginType `json:"margin_type"`
	Discount         float64          `json:"discount"`
	Items            []struct {
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		UnitCost  float64 `json:"unit_cost"`
		UnitPrice float64 `json:"unit_price"`
	} `json:"items"`
}

type quoteOutput struct {
	Items   []quote.LineItem `json:"items"`
	Summary quote.Summary    `json:"summary"`
	Warning string           `json:"warning,omitempty"`
	Code    string           `json:"code,omitempty"`
}

func priceQuote(in quoteInput, policy quote.Policy, defaultMargin quote.MarginType) (quoteOutput, error) {
	items := make([]quote.LineItem, 0, len(in.Items))
	for i, it := range in.Items {
		li, err := quote.NewLineItem(fmt.Sprintf("L%d", i+1), it.Name, it.Quantity, it.UnitCost, it.UnitPrice)
		if err != nil {
			return quoteOutput{}, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, li)
	}

	mt := in.MarginType
	if mt == "" {
		mt = defaultMargin
	}
	sum, err := quote.Summarize(items, in.Discount, mt, policy)
	if err != nil {
		return quoteOutput{}, err
	}
	return quoteOutput{Items: items, Summary: sum, Warning: quoteaction.GuardrailWarning(sum)}, nil
}

func (cmd *QuoteCmd) run(ctx context.Context, c *cli.Command) error {
	in, err := cmd.input.Read()
	if err != nil {
		return err
	}

	cfg := cmd.app.Config
	res, err := priceQuote(in, cfg.QuotePolicy(), cfg.Quote.DefaultMarginType)
	if err != nil {
		return err
	}

	if cmd.save {
		if in.OrganizationName == "" {
			return errors.New("organization_name is required with --save")
		}
		rec, err := cmd.app.Gateway.CreateQuote(ctx, gateway.QuotePayload{
			OrganizationName: in.OrganizationName,
			Items:            res.Items,
			Summary:          res.Summary,
			ValidUntil:       time.Now().AddDate(0, 0, cfg.Quote.ValidityDays),
		})
		if err != nil {
			return errors.New(gateway.UserMessage(err))
		}
		res.Code = rec.QuoteCode
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, res)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "ITEM\tQTY\tCOST\tPRICE\tTOTAL\tMARGIN\t")
	for _, li := range res.Items {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t\n", li.Name, li.Quantity,
			quote.FormatMoney(li.UnitCost), quote.FormatMoney(li.UnitPrice),
			quote.FormatMoney(li.LineTotal), quote.FormatPercent(li.Margin))
	}
	_ = w.Flush()

	s := res.Summary
	_, _ = fmt.Fprintf(out, "\nSubtotal  %s\nDiscount  %s\nTax       %s\nTotal     %s\nMargin    %s (%s)\n",
		quote.FormatMoney(s.Subtotal), quote.FormatMoney(s.Discount), quote.FormatMoney(s.Tax),
		quote.FormatMoney(s.Total), quote.FormatPercent(s.OverallMargin), s.MarginType)

	p := printer.Ctx(ctx)
	if res.Warning != "" {
		p.Warnf("%s", res.Warning)
	}
	if res.Code != "" {
		p.Successf("Quote %s saved", res.Code)
	}
	return nil
}
