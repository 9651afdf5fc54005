// Package quote is the quote-building action: pick an organization, enter
// line items with live margin feedback, review, submit.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/actions/orgs"
	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	calc "github.com/colonyops/wiz/internal/core/quote"
	"github.com/colonyops/wiz/internal/core/wizard"
)

const ID = "quote"

// Session keys.
const (
	KeyItems      = "items"
	KeyMarginType = "margin_type"
	KeyDiscount   = "discount"
	KeyQuoteID    = "quote_id"
	KeyQuoteCode  = "quote_code"
	KeyTotal      = "total"
)

const itemsHelp = `add <qty> <cost> <price> <name>   add a line item
qty|cost|price <n> <value>        edit line n
name <n> <text>                   rename line n
rm <n>                            remove line n
margin <wholesale|event|retail>   set the margin type
discount <amount>                 set a flat discount`

// Definition returns the quote action.
func Definition() action.Definition {
	return action.Definition{
		ID:          ID,
		Title:       "Quote",
		Description: "Build a priced quote with margin guardrails",
		Init: func(st action.State) map[string]any {
			return map[string]any{
				KeyItems:      calc.Items{},
				KeyMarginType: st.DefaultMarginType,
				KeyDiscount:   0.0,
			}
		},
		Steps: []action.Step{
			orgs.PickStep(),
			{
				Type:   wizard.StepChoose,
				Title:  "Line items",
				Help:   itemsHelp,
				View:   viewItems,
				Handle: handleItems,
				Ready: func(st action.State) error {
					if len(Items(st.Session)) == 0 {
						return criterio.NewFieldErrors(KeyItems, errors.New("add at least one line item"))
					}
					return nil
				},
			},
			{
				Type:  wizard.StepConfirm,
				Title: "Review",
				View: func(st action.State) string {
					return "Create this quote for " + orgs.Name(st.Session) + "?\n\n" + viewItems(st)
				},
			},
			{
				Type:  wizard.StepDone,
				Title: "Created",
				View: func(st action.State) string {
					return fmt.Sprintf("Quote %s created for %s.\nTotal %s",
						wizard.GetOr(st.Session, KeyQuoteCode, ""),
						orgs.Name(st.Session),
						calc.FormatMoney(wizard.GetOr(st.Session, KeyTotal, 0.0)))
				},
			},
		},
		Submit: submit,
	}
}

// Items returns the line items in the session.
func Items(s wizard.Session) calc.Items {
	return wizard.GetOr(s, KeyItems, calc.Items{})
}

// Summarize computes the quote totals for the session.
func Summarize(st action.State) (calc.Summary, error) {
	return calc.Summarize(
		Items(st.Session),
		wizard.GetOr(st.Session, KeyDiscount, 0.0),
		wizard.GetOr(st.Session, KeyMarginType, st.DefaultMarginType),
		st.Quote,
	)
}

// GuardrailWarning describes a summary outside its guardrail, or "".
func GuardrailWarning(sum calc.Summary) string {
	switch {
	case sum.BelowGuardrail:
		return fmt.Sprintf("Overall margin %s is below the %s minimum of %s",
			calc.FormatPercent(sum.OverallMargin), sum.MarginType, calc.FormatPercent(sum.Guardrail.Min))
	case sum.AboveGuardrail:
		return fmt.Sprintf("Overall margin %s is above the %s maximum of %s",
			calc.FormatPercent(sum.OverallMargin), sum.MarginType, calc.FormatPercent(sum.Guardrail.Max))
	}
	return ""
}

func handleItems(st action.State, cmd action.Command) (action.Reply, error) {
	items := Items(st.Session)

	var (
		next calc.Items
		info string
		err  error
	)

	switch cmd.Name {
	case "add":
		next, info, err = addItem(st, items, cmd)
	case "qty", "cost", "price", "name":
		next, info, err = editItem(items, cmd)
	case "rm":
		var li calc.LineItem
		li, err = lineAt(items, cmd)
		if err == nil {
			next, err = items.Remove(li.ID)
			info = "Removed " + li.Name
		}
	case "margin":
		mt, err := st.Quote.ParseMarginType(cmd.Arg(0))
		if err != nil {
			return action.Reply{}, err
		}
		return withWarning(st, KeyMarginType, mt, "Margin type: "+string(mt))
	case "discount":
		d, err := cmd.Float(0)
		if err != nil {
			return action.Reply{}, err
		}
		if d < 0 {
			return action.Reply{}, calc.ErrNegativeAmount
		}
		return withWarning(st, KeyDiscount, d, "Discount: "+calc.FormatMoney(d))
	default:
		return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
	}
	if err != nil {
		return action.Reply{}, err
	}
	return withWarning(st, KeyItems, next, info)
}

// withWarning sets key and attaches the guardrail warning the change produces.
func withWarning(st action.State, key string, value any, info string) (action.Reply, error) {
	next, err := st.Session.MergeAll(map[string]any{key: value})
	if err != nil {
		return action.Reply{}, err
	}
	sum, err := Summarize(action.State{Env: st.Env, Session: next})
	if err != nil {
		return action.Reply{}, err
	}
	return action.Reply{
		Set:  map[string]any{key: value},
		Info: info,
		Warn: GuardrailWarning(sum),
	}, nil
}

func addItem(st action.State, items calc.Items, cmd action.Command) (calc.Items, string, error) {
	if len(cmd.Args) < 4 {
		return nil, "", errors.New("usage: add <qty> <cost> <price> <name>")
	}
	qty, err := cmd.Int(0)
	if err != nil {
		return nil, "", err
	}
	cost, err := cmd.Float(1)
	if err != nil {
		return nil, "", err
	}
	price, err := cmd.Float(2)
	if err != nil {
		return nil, "", err
	}

	li, err := calc.NewLineItem(st.NewID(), cmd.RestFrom(3), qty, cost, price)
	if err != nil {
		return nil, "", err
	}
	return items.Add(li), "Added " + li.Name, nil
}

func lineAt(items calc.Items, cmd action.Command) (calc.LineItem, error) {
	n, err := cmd.Int(0)
	if err != nil {
		return calc.LineItem{}, err
	}
	return items.At(n)
}

func editItem(items calc.Items, cmd action.Command) (calc.Items, string, error) {
	li, err := lineAt(items, cmd)
	if err != nil {
		return nil, "", err
	}

	var fn func(calc.LineItem) (calc.LineItem, error)
	switch cmd.Name {
	case "qty":
		q, err := cmd.Int(1)
		if err != nil {
			return nil, "", err
		}
		fn = func(li calc.LineItem) (calc.LineItem, error) { return li.WithQuantity(q), nil }
	case "cost", "price":
		v, err := cmd.Float(1)
		if err != nil {
			return nil, "", err
		}
		fn = func(li calc.LineItem) (calc.LineItem, error) {
			if cmd.Name == "cost" {
				return li.WithUnitCost(v)
			}
			return li.WithUnitPrice(v)
		}
	case "name":
		name := cmd.RestFrom(1)
		if name == "" {
			return nil, "", errors.New("name: text is required")
		}
		fn = func(li calc.LineItem) (calc.LineItem, error) { return li.WithName(name), nil }
	}

	next, err := items.Update(li.ID, fn)
	if err != nil {
		return nil, "", err
	}
	return next, "Updated " + li.Name, nil
}

func viewItems(st action.State) string {
	items := Items(st.Session)
	if len(items) == 0 {
		return "No line items yet.\n"
	}

	t := table.New().Headers("#", "Item", "Qty", "Cost", "Price", "Total", "Margin")
	for i, li := range items {
		t.Row(
			fmt.Sprint(i+1), li.Name, fmt.Sprint(li.Quantity),
			calc.FormatMoney(li.UnitCost), calc.FormatMoney(li.UnitPrice),
			calc.FormatMoney(li.LineTotal), calc.FormatPercent(li.Margin),
		)
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")

	sum, err := Summarize(st)
	if err != nil {
		fmt.Fprintf(&b, "%v\n", err)
		return b.String()
	}
	fmt.Fprintf(&b, "Subtotal %s", calc.FormatMoney(sum.Subtotal))
	if sum.Discount > 0 {
		fmt.Fprintf(&b, "  Discount -%s", calc.FormatMoney(sum.Discount))
	}
	fmt.Fprintf(&b, "  Tax %s  Total %s\n", calc.FormatMoney(sum.Tax), calc.FormatMoney(sum.Total))
	fmt.Fprintf(&b, "Margin %s (%s, target %s-%s)\n",
		calc.FormatPercent(sum.OverallMargin), sum.MarginType,
		calc.FormatPercent(sum.Guardrail.Min), calc.FormatPercent(sum.Guardrail.Max))
	if w := GuardrailWarning(sum); w != "" {
		b.WriteString("! " + w + "\n")
	}
	return b.String()
}

func submit(ctx context.Context, st action.State) (action.Result, error) {
	sum, err := Summarize(st)
	if err != nil {
		return action.Result{}, err
	}

	rec, err := st.Gateway.CreateQuote(ctx, gateway.QuotePayload{
		OrganizationID:   orgs.ID(st.Session),
		OrganizationName: orgs.Name(st.Session),
		Items:            Items(st.Session),
		Summary:          sum,
		ValidUntil:       st.Now().AddDate(0, 0, st.ValidityDays),
	})
	if err != nil {
		return action.Result{}, gateway.Wrap("create quote", err)
	}

	return action.Result{
		Data: map[string]any{
			KeyQuoteID:   rec.ID,
			KeyQuoteCode: rec.QuoteCode,
			KeyTotal:     sum.Total,
		},
		Message: "Quote " + rec.QuoteCode + " created",
	}, nil
}
