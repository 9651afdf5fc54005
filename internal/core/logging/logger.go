package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with cmp=name.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Logger returns a component logger carrying the scope's fields.
func (s Scope) Logger(component string) zerolog.Logger {
	return s.fields(log.With().Str("cmp", component)).Logger()
}
