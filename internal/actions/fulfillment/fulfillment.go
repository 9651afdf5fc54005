// Package fulfillment is the action that sends a saved quote to the
// fulfillment partner: map each line to a partner product, pick shipping,
// submit the order.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/wizard"
)

const ID = "fulfillment"

// Session keys.
const (
	KeyQuotes   = "quotes"
	KeyQuote    = "quote"
	KeyMappings = "mappings"
	KeyShipping = "shipping_method"
	KeyGift     = "gift_message"
	KeyOrderID  = "external_order_id"
)

// ShippingMethods are the methods the partner accepts.
var ShippingMethods = []string{"ground", "expedited", "overnight"}

// MaxGiftMessage caps the gift message length in runes.
const MaxGiftMessage = 200

const productsHelp = `map <line> <product id>   map a quote line to a partner product
unmap <line>              clear a mapping
ship <method>             ground, expedited or overnight
gift <message>            optional gift message (empty clears)`

// Definition returns the fulfillment action.
func Definition() action.Definition {
	return action.Definition{
		ID:          ID,
		Title:       "Fulfillment",
		Description: "Send a quote to the fulfillment partner",
		Init: func(action.State) map[string]any {
			return map[string]any{KeyMappings: map[string]string{}}
		},
		Steps: []action.Step{
			{
				Type:   wizard.StepPick,
				Title:  "Quote",
				Help:   "use <n> to pick a quote",
				Load:   loadQuotes,
				View:   viewQuotes,
				Handle: handleQuote,
				Ready: func(st action.State) error {
					if _, ok := Quote(st.Session); !ok {
						return criterio.NewFieldErrors(KeyQuote, errors.New("pick a quote"))
					}
					return nil
				},
			},
			{
				Type:   wizard.StepChoose,
				Title:  "Products",
				Help:   productsHelp,
				View:   viewMappings,
				Handle: handleProducts,
				Ready:  readyProducts,
			},
			{
				Type:  wizard.StepConfirm,
				Title: "Submit",
				View: func(st action.State) string {
					return "Submit this order?\n\n" + viewMappings(st)
				},
			},
			{
				Type:  wizard.StepDone,
				Title: "Submitted",
				View: func(st action.State) string {
					return "Fulfillment order " + wizard.GetOr(st.Session, KeyOrderID, "") + " submitted."
				},
			},
		},
		Submit: submit,
	}
}

// Quote returns the chosen quote.
func Quote(s wizard.Session) (gateway.QuoteRecord, bool) {
	return wizard.Get[gateway.QuoteRecord](s, KeyQuote)
}

// Mappings returns line id to product id.
func Mappings(s wizard.Session) map[string]string {
	return wizard.GetOr(s, KeyMappings, map[string]string{})
}

func loadQuotes(ctx context.Context, st action.State) (action.Result, error) {
	quotes, err := st.Gateway.ListQuotes(ctx)
	if err != nil {
		return action.Result{}, gateway.Wrap("list quotes", err)
	}
	return action.Result{Data: map[string]any{KeyQuotes: quotes}}, nil
}

func viewQuotes(st action.State) string {
	quotes := wizard.GetOr[[]gateway.QuoteRecord](st.Session, KeyQuotes, nil)
	if len(quotes) == 0 {
		return "No quotes yet. Create one with the quote action first.\n"
	}

	var b strings.Builder
	for i, q := range quotes {
		fmt.Fprintf(&b, "%2d. %s  %s  %d lines\n", i+1, q.QuoteCode, q.OrganizationName, len(q.Items))
	}
	if q, ok := Quote(st.Session); ok {
		fmt.Fprintf(&b, "\nSelected: %s\n", q.QuoteCode)
	}
	return b.String()
}

func handleQuote(st action.State, cmd action.Command) (action.Reply, error) {
	if cmd.Name != "use" {
		return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
	}
	n, err := cmd.Int(0)
	if err != nil {
		return action.Reply{}, err
	}
	quotes := wizard.GetOr[[]gateway.QuoteRecord](st.Session, KeyQuotes, nil)
	if n < 1 || n > len(quotes) {
		return action.Reply{}, fmt.Errorf("no quote #%d", n)
	}

	q := quotes[n-1]
	set := map[string]any{KeyQuote: q}
	if prev, ok := Quote(st.Session); ok && prev.ID != q.ID {
		set[KeyMappings] = map[string]string{}
	}
	return action.Reply{Set: set, Info: "Quote: " + q.QuoteCode}, nil
}

func handleProducts(st action.State, cmd action.Command) (action.Reply, error) {
	q, _ := Quote(st.Session)

	switch cmd.Name {
	case "map", "unmap":
		n, err := cmd.Int(0)
		if err != nil {
			return action.Reply{}, err
		}
		if n < 1 || n > len(q.Items) {
			return action.Reply{}, fmt.Errorf("no line #%d", n)
		}
		line := q.Items[n-1]
		m := maps.Clone(Mappings(st.Session))
		if cmd.Name == "unmap" {
			delete(m, line.ID)
			return action.Reply{Set: map[string]any{KeyMappings: m}, Info: "Unmapped " + line.Name}, nil
		}
		product := cmd.Arg(1)
		if product == "" {
			return action.Reply{}, errors.New("usage: map <line> <product id>")
		}
		m[line.ID] = product
		return action.Reply{Set: map[string]any{KeyMappings: m}, Info: line.Name + " -> " + product}, nil
	case "ship":
		method := strings.ToLower(cmd.Arg(0))
		if !slices.Contains(ShippingMethods, method) {
			return action.Reply{}, fmt.Errorf("shipping method must be one of %s", strings.Join(ShippingMethods, ", "))
		}
		return action.Reply{Set: map[string]any{KeyShipping: method}, Info: "Shipping: " + method}, nil
	case "gift":
		msg := gateway.TruncateBrief(cmd.Rest, MaxGiftMessage)
		reply := action.Reply{Set: map[string]any{KeyGift: msg}, Info: "Gift message set"}
		if msg == "" {
			reply.Info = "Gift message cleared"
		}
		if msg != cmd.Rest {
			reply.Warn = fmt.Sprintf("Gift message cut to %d characters", MaxGiftMessage)
		}
		return reply, nil
	}
	return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
}

func readyProducts(st action.State) error {
	var errs criterio.FieldErrorsBuilder
	if len(Payload(st).Mappings) == 0 {
		errs = errs.Append(KeyMappings, errors.New("map at least one line"))
	}
	if wizard.GetOr(st.Session, KeyShipping, "") == "" {
		errs = errs.Append(KeyShipping, errors.New("choose a shipping method"))
	}
	return errs.ToError()
}

// Payload builds the order payload, keeping quote line order and skipping
// unmapped lines.
func Payload(st action.State) gateway.FulfillmentPayload {
	q, _ := Quote(st.Session)
	m := Mappings(st.Session)

	p := gateway.FulfillmentPayload{
		QuoteID:        q.ID,
		QuoteCode:      q.QuoteCode,
		ShippingMethod: wizard.GetOr(st.Session, KeyShipping, ""),
		GiftMessage:    wizard.GetOr(st.Session, KeyGift, ""),
	}
	for _, li := range q.Items {
		product, ok := m[li.ID]
		if !ok {
			continue
		}
		p.Mappings = append(p.Mappings, gateway.ProductMapping{
			LineItemID: li.ID,
			LineName:   li.Name,
			Quantity:   li.Quantity,
			ProductID:  product,
		})
	}
	return p
}

func viewMappings(st action.State) string {
	q, _ := Quote(st.Session)
	m := Mappings(st.Session)

	var b strings.Builder
	fmt.Fprintf(&b, "Quote %s\n", q.QuoteCode)
	for i, li := range q.Items {
		product := m[li.ID]
		if product == "" {
			product = "-"
		}
		fmt.Fprintf(&b, "%2d. %-24s x%-5d %s\n", i+1, li.Name, li.Quantity, product)
	}
	if s := wizard.GetOr(st.Session, KeyShipping, ""); s != "" {
		fmt.Fprintf(&b, "Shipping: %s\n", s)
	}
	if g := wizard.GetOr(st.Session, KeyGift, ""); g != "" {
		fmt.Fprintf(&b, "Gift message: %s\n", g)
	}
	return b.String()
}

func submit(ctx context.Context, st action.State) (action.Result, error) {
	rec, err := st.Gateway.CreateFulfillmentOrder(ctx, Payload(st))
	if err != nil {
		return action.Result{}, gateway.Wrap("create fulfillment order", err)
	}
	return action.Result{
		Data:    map[string]any{KeyOrderID: rec.ExternalOrderID},
		Message: "Order " + rec.ExternalOrderID + " submitted",
	}, nil
}
