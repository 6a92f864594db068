package discord

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandDefinitionsHaveHandlers(t *testing.T) {
	b := NewBot(nil, nil, nil, nil, nil, nil, nil, nil)

	seen := make(map[string]bool)
	for _, cmd := range commandDefinitions() {
		require.False(t, seen[cmd.Name], "duplicate command %s", cmd.Name)
		seen[cmd.Name] = true

		_, ok := b.handlers[cmd.Name]
		require.True(t, ok, "command %s has no handler", cmd.Name)
	}

	for name := range b.handlers {
		require.True(t, seen[name], "handler %s has no command definition", name)
	}
}

func TestCommandDescriptionsWithinLimits(t *testing.T) {
	for _, cmd := range commandDefinitions() {
		require.NotEmpty(t, cmd.Description, "command %s", cmd.Name)
		require.LessOrEqual(t, len(cmd.Description), 100, "command %s", cmd.Name)
		for _, opt := range cmd.Options {
			require.NotEmpty(t, opt.Description, "option %s.%s", cmd.Name, opt.Name)
		}
	}
}
