// file: cmd/root_test.go
// version: 1.0.0
// guid: b162a9ba-cbdc-edfe-0f10-213243546576

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/tokenbridge/internal/config"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"], "serve command should be registered")
	assert.True(t, names["check"], "check command should be registered")
	assert.True(t, names["save-credentials"], "save-credentials command should be registered")
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "exchange-endpoint", "client-id", "client-secret"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
}

func TestServeFlags(t *testing.T) {
	for _, name := range []string{"port", "host", "read-timeout", "write-timeout", "idle-timeout", "ttl", "cleanup-interval"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), "missing serve flag %s", name)
	}
}

func TestRequireCredentials(t *testing.T) {
	orig := config.AppConfig
	defer func() { config.AppConfig = orig }()

	config.AppConfig = config.Config{}
	assert.Error(t, requireCredentials())

	config.AppConfig.ExchangeEndpoint = "https://idp.example.com/token"
	assert.Error(t, requireCredentials())

	config.AppConfig.ClientID = "app-id"
	config.AppConfig.ClientSecret = "app-secret"
	require.NoError(t, requireCredentials())
}

func TestCheckCommandRequiresTokenArg(t *testing.T) {
	assert.Error(t, checkCmd.Args(checkCmd, []string{}))
	assert.NoError(t, checkCmd.Args(checkCmd, []string{"upstream-tok"}))
}
