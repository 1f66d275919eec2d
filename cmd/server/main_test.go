package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersConfigFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"-c", "relay.yaml", "--rate-limit", "0"}))

	for _, name := range []string{"config", "host", "port", "log-level", "metrics-addr", "max-history", "rate-limit", "allowed-origins"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.True(t, cmd.Flags().Changed("rate-limit"))
	assert.False(t, cmd.Flags().Changed("port"))

	path, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "relay.yaml", path)
}

func TestRootRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.Execute())
}
