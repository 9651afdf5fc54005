// Package orgs provides the organization pick step shared by several actions.
package orgs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/wizard"
)

// Session keys written by the pick step.
const (
	KeyList = "organizations"
	KeyID   = "organization_id"
	KeyName = "organization_name"
)

const help = "use <n> to pick a listed organization, or org <name> to type one"

// PickStep lists organizations from the gateway and records the chosen one.
func PickStep() action.Step {
	return action.Step{
		Type:  wizard.StepPick,
		Title: "Organization",
		Help:  help,
		Load:  load,
		View:  view,
		Handle: func(st action.State, cmd action.Command) (action.Reply, error) {
			switch cmd.Name {
			case "use":
				n, err := cmd.Int(0)
				if err != nil {
					return action.Reply{}, err
				}
				list := List(st.Session)
				if n < 1 || n > len(list) {
					return action.Reply{}, fmt.Errorf("no organization #%d", n)
				}
				org := list[n-1]
				return action.Reply{
					Set:  map[string]any{KeyID: org.ID, KeyName: org.Name},
					Info: "Organization: " + org.Name,
				}, nil
			case "org":
				name := strings.TrimSpace(cmd.Rest)
				if name == "" {
					return action.Reply{}, errors.New("org: name is required")
				}
				return action.Reply{
					Set:  map[string]any{KeyID: "", KeyName: name},
					Info: "Organization: " + name,
				}, nil
			}
			return action.Reply{}, fmt.Errorf("unknown command %q (%s)", cmd.Name, help)
		},
		Ready: Ready,
	}
}

func load(ctx context.Context, st action.State) (action.Result, error) {
	list, err := st.Gateway.ListOrganizations(ctx)
	if err != nil {
		return action.Result{}, gateway.Wrap("list organizations", err)
	}
	return action.Result{Data: map[string]any{KeyList: list}}, nil
}

func view(st action.State) string {
	var b strings.Builder
	list := List(st.Session)
	if len(list) == 0 {
		b.WriteString("No saved organizations.\n")
	}
	for i, org := range list {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, org.Name)
	}
	if name := Name(st.Session); name != "" {
		fmt.Fprintf(&b, "\nSelected: %s\n", name)
	}
	return b.String()
}

// Ready requires an organization name.
func Ready(st action.State) error {
	if Name(st.Session) == "" {
		return criterio.NewFieldErrors(KeyName, errors.New("choose or type an organization"))
	}
	return nil
}

// List returns the loaded organizations.
func List(s wizard.Session) []gateway.OrganizationRecord {
	return wizard.GetOr[[]gateway.OrganizationRecord](s, KeyList, nil)
}

// Name returns the chosen organization name.
func Name(s wizard.Session) string {
	return wizard.GetOr(s, KeyName, "")
}

// ID returns the chosen organization id; empty for typed names.
func ID(s wizard.Session) string {
	return wizard.GetOr(s, KeyID, "")
}
