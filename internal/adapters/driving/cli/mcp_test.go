package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	flag := mcpCmd.Flags().Lookup("http")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestNewMCPServer(t *testing.T) {
	t.Run("builds from runtime services", func(t *testing.T) {
		fake := setupTestRuntime(t)

		server, err := newMCPServer(fake)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("missing credential", func(t *testing.T) {
		fake := setupTestRuntime(t)
		fake.providerErr = domain.ErrMissingCredential

		_, err := newMCPServer(fake)
		assert.ErrorIs(t, err, domain.ErrMissingCredential)
	})
}
