// Package testutil boots throwaway PocketBase apps for package tests.
package testutil

import (
	"testing"

	_ "easel-ticket/migrations"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/require"
)

// NewApp returns a bootstrapped app in a temp data dir with every
// collection migration applied. It is cleaned up with the test.
func NewApp(t testing.TB) core.App {
	t.Helper()

	app := core.NewBaseApp(core.BaseAppConfig{
		DataDir: t.TempDir(),
	})
	require.NoError(t, app.Bootstrap())
	require.NoError(t, app.RunAllMigrations())
	require.NoError(t, app.ReloadCachedCollections())

	t.Cleanup(func() {
		_ = app.ResetBootstrapState()
	})
	return app
}
