package mcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToolCatalog(t *testing.T) {
	catalog := buildToolCatalog()
	require.NotEmpty(t, catalog)

	seen := make(map[string]bool)
	for _, def := range catalog {
		require.NotEmpty(t, def.Name)
		require.NotEmpty(t, def.Description, "tool %s should have a description", def.Name)
		require.False(t, seen[def.Name], "duplicate tool name %s", def.Name)
		seen[def.Name] = true

		schema := mustSchema(def.Name, def.InputSchema)
		require.NotNil(t, schema, "tool %s should have an input schema", def.Name)
		require.Equal(t, "object", schema.Type)
	}
}
