package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingValidator)
	})

	t.Run("missing validator returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingValidator)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Validator: &mockValidator{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("validator only is valid", func(t *testing.T) {
		ports := &Ports{Validator: &mockValidator{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Validator: &mockValidator{},
			Templates: &mockTemplateService{},
			Generator: &mockGenerator{},
			Documents: &mockDocumentService{},
			Search:    &mockSearchService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
