package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/configs"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	return out.String()
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "reportvault")
}

func TestRegistryListings(t *testing.T) {
	dir := t.TempDir()

	assert.Contains(t, run(t, "-c", dir, "db", "ls"), "sqlite")
	assert.Contains(t, run(t, "-c", dir, "kv", "ls"), "memory")
	assert.Contains(t, run(t, "-c", dir, "mq", "ls"), "gochannel")
}

func TestConfigValidateDefaults(t *testing.T) {
	assert.Contains(t, run(t, "-c", t.TempDir(), "config", "validate"), "config is valid")
}

func TestConfiguredTypesAreMarked(t *testing.T) {
	dir := t.TempDir()

	assert.Contains(t, run(t, "-c", dir, "kv", "ls"), "* memory")
	assert.Contains(t, run(t, "-c", dir, "mq", "ls"), "* gochannel")
}

func TestMQTopics(t *testing.T) {
	out := run(t, "-c", t.TempDir(), "mq", "topics")

	assert.Contains(t, out, "rv.report.created")
	assert.Contains(t, out, "rv.activity.report_linked")
}

func TestKVKeysOnMemoryStore(t *testing.T) {
	out := run(t, "-c", t.TempDir(), "kv", "keys")

	assert.Contains(t, out, "0 key(s)")
	assert.Contains(t, out, "process local")
}

func TestRenderConfigMasksSecrets(t *testing.T) {
	cfg := &configs.AppConfig{}
	cfg.S3.SecretAccessKey = "very-secret"
	cfg.DB.Password = "hunter2"
	cfg.Tree.MaxDepth = 7

	out, err := renderConfig(cfg, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "very-secret")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, `"***"`)

	section, err := renderConfig(cfg, []string{"tree"})
	require.NoError(t, err)
	assert.Contains(t, section, "7")

	_, err = renderConfig(cfg, []string{"nope"})
	assert.Error(t, err)
}
