// Package merchbundle is the action that allocates a merchandise bundle for an
// organization.
package merchbundle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/actions/orgs"
	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/wizard"
)

const ID = "merchbundle"

// Session keys.
const (
	KeyProducts   = "products"
	KeyStyle      = "design_style"
	KeyTeamStore  = "team_store"
	KeyBundleCode = "bundle_code"
	KeyAllocated  = "total_allocated"
)

// ProductTypes lists the product types a bundle may enable, in display order.
var ProductTypes = []string{"tee", "hoodie", "cap", "jersey", "tote", "sticker"}

const productsHelp = `enable <type> <qty>   enable a product type
disable <type>        remove a product type
style <text>          design style
store on|off          open a team store`

// Definition returns the merch bundle action.
func Definition() action.Definition {
	return action.Definition{
		ID:          ID,
		Title:       "Merch bundle",
		Description: "Allocate a merchandise bundle for an organization",
		Steps: []action.Step{
			orgs.PickStep(),
			{
				Type:   wizard.StepChoose,
				Title:  "Products",
				Help:   productsHelp,
				View:   view,
				Handle: handle,
				Ready: func(st action.State) error {
					if len(Products(st.Session)) == 0 {
						return criterio.NewFieldErrors(KeyProducts, errors.New("enable at least one product"))
					}
					return nil
				},
			},
			{
				Type:  wizard.StepConfirm,
				Title: "Allocate",
				View: func(st action.State) string {
					return "Allocate this bundle for " + orgs.Name(st.Session) + "?\n\n" + view(st)
				},
			},
			{
				Type:  wizard.StepDone,
				Title: "Allocated",
				View: func(st action.State) string {
					return fmt.Sprintf("Bundle %s allocated: %d items.",
						wizard.GetOr(st.Session, KeyBundleCode, ""),
						wizard.GetOr(st.Session, KeyAllocated, 0))
				},
			},
		},
		Submit: submit,
	}
}

// Products returns the enabled products in display order.
func Products(s wizard.Session) []gateway.BundleProduct {
	return wizard.GetOr[[]gateway.BundleProduct](s, KeyProducts, nil)
}

// Total is the number of items across enabled products.
func Total(products []gateway.BundleProduct) int {
	n := 0
	for _, p := range products {
		n += p.Quantity
	}
	return n
}

func handle(st action.State, cmd action.Command) (action.Reply, error) {
	products := Products(st.Session)

	switch cmd.Name {
	case "enable":
		typ := strings.ToLower(cmd.Arg(0))
		if !slices.Contains(ProductTypes, typ) {
			return action.Reply{}, fmt.Errorf("unknown product type %q (one of %s)", cmd.Arg(0), strings.Join(ProductTypes, ", "))
		}
		qty, err := cmd.Int(1)
		if err != nil {
			return action.Reply{}, err
		}
		if qty < 1 {
			return action.Reply{}, errors.New("quantity must be at least 1")
		}
		next := setProduct(products, gateway.BundleProduct{Type: typ, Quantity: qty})
		return action.Reply{Set: map[string]any{KeyProducts: next}, Info: fmt.Sprintf("%s x%d", typ, qty)}, nil
	case "disable":
		typ := strings.ToLower(cmd.Arg(0))
		i := slices.IndexFunc(products, func(p gateway.BundleProduct) bool { return p.Type == typ })
		if i < 0 {
			return action.Reply{}, fmt.Errorf("%s is not enabled", cmd.Arg(0))
		}
		next := slices.Delete(slices.Clone(products), i, i+1)
		return action.Reply{Set: map[string]any{KeyProducts: next}, Info: "Disabled " + typ}, nil
	case "style":
		return action.Reply{Set: map[string]any{KeyStyle: cmd.Rest}, Info: "Style: " + cmd.Rest}, nil
	case "store":
		switch strings.ToLower(cmd.Arg(0)) {
		case "on", "yes", "true":
			return action.Reply{Set: map[string]any{KeyTeamStore: true}, Info: "Team store on"}, nil
		case "off", "no", "false":
			return action.Reply{Set: map[string]any{KeyTeamStore: false}, Info: "Team store off"}, nil
		}
		return action.Reply{}, errors.New("usage: store on|off")
	}
	return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
}

// setProduct inserts or replaces p, keeping ProductTypes order.
func setProduct(products []gateway.BundleProduct, p gateway.BundleProduct) []gateway.BundleProduct {
	out := slices.DeleteFunc(slices.Clone(products), func(e gateway.BundleProduct) bool { return e.Type == p.Type })
	out = append(out, p)
	slices.SortStableFunc(out, func(a, b gateway.BundleProduct) int {
		return slices.Index(ProductTypes, a.Type) - slices.Index(ProductTypes, b.Type)
	})
	return out
}

func view(st action.State) string {
	var b strings.Builder
	products := Products(st.Session)
	if len(products) == 0 {
		b.WriteString("No products enabled.\n")
	}
	for _, p := range products {
		fmt.Fprintf(&b, "  %-8s x%d\n", p.Type, p.Quantity)
	}
	fmt.Fprintf(&b, "Total: %d\n", Total(products))
	if s := wizard.GetOr(st.Session, KeyStyle, ""); s != "" {
		fmt.Fprintf(&b, "Style: %s\n", s)
	}
	if wizard.GetOr(st.Session, KeyTeamStore, false) {
		b.WriteString("Team store: on\n")
	}
	return b.String()
}

func submit(ctx context.Context, st action.State) (action.Result, error) {
	rec, err := st.Gateway.CreateMerchBundle(ctx, gateway.MerchBundlePayload{
		OrganizationID:   orgs.ID(st.Session),
		OrganizationName: orgs.Name(st.Session),
		Products:         Products(st.Session),
		DesignStyle:      wizard.GetOr(st.Session, KeyStyle, ""),
		TeamStore:        wizard.GetOr(st.Session, KeyTeamStore, false),
	})
	if err != nil {
		return action.Result{}, gateway.Wrap("create merch bundle", err)
	}
	return action.Result{
		Data:    map[string]any{KeyBundleCode: rec.BundleCode, KeyAllocated: rec.TotalAllocated},
		Message: fmt.Sprintf("Bundle %s allocated", rec.BundleCode),
	}, nil
}
