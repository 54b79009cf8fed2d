package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
	assert.Equal(t, "serve", mcpServeCmd.Use)
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_LongDescribesTools(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "validate product ideas")
	assert.Contains(t, mcpServeCmd.Long, "docsmith mcp serve --port 8080")
}

func TestMCPServeCmd_RequiresValidator(t *testing.T) {
	SetServices(nil)

	_, err := executeCommand("mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validator")
}
