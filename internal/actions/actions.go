// Package actions assembles the built-in wizard actions.
package actions

import (
	"github.com/colonyops/wiz/internal/actions/colormatch"
	"github.com/colonyops/wiz/internal/actions/designbrief"
	"github.com/colonyops/wiz/internal/actions/fulfillment"
	"github.com/colonyops/wiz/internal/actions/merchbundle"
	"github.com/colonyops/wiz/internal/actions/onboarding"
	"github.com/colonyops/wiz/internal/actions/quote"
	"github.com/colonyops/wiz/internal/core/action"
)

// Builtin returns every built-in action definition.
func Builtin() []action.Definition {
	return []action.Definition{
		quote.Definition(),
		colormatch.Definition(),
		designbrief.Definition(),
		fulfillment.Definition(),
		onboarding.Definition(),
		merchbundle.Definition(),
	}
}

// Registry returns a registry holding the built-in actions.
func Registry() (*action.Registry, error) {
	return action.NewRegistry(Builtin()...)
}
