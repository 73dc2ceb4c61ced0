package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/testutils"
	"github.com/conneroisu/folio/internal/version"
)

func TestBindFlags(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.IntP("port", "p", 3000, "")
	fs.String("title", "folio", "")
	fs.Bool("live-reload", false, "")
	fs.String("unrelated", "", "")
	require.NoError(t, fs.Parse([]string{"--port", "8080", "--live-reload"}))

	require.NoError(t, bindFlags(v, fs))

	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Development.LiveReload)
	assert.Equal(t, "folio", cfg.Site.Title)
	assert.False(t, v.IsSet("unrelated"))
}

func TestFlagKeysAreConfigKeys(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	for flag, key := range flagKeys {
		assert.True(t, v.IsSet(key), "--%s maps to unknown key %s", flag, key)
	}
}

func TestCheckContent(t *testing.T) {
	root := testutils.CreateTempContent(t, testutils.SampleContent())
	cfg := testutils.CreateTestConfig(root)

	store, err := content.NewDirStore(root)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, checkContent(context.Background(), &out, cfg, store))
	assert.Equal(t, "✓ posts: 3 entries\n✓ projects: 2 entries\n", out.String())
}

func TestCheckContentReportsProblems(t *testing.T) {
	files := testutils.SampleContent()
	delete(files, "posts/hello.md")
	delete(files, "posts/rust.md")
	files["projects/index.json"] = `{"projects": "nope"}`
	root := testutils.CreateTempContent(t, files)
	cfg := testutils.CreateTestConfig(root)

	store, err := content.NewDirStore(root)
	require.NoError(t, err)

	var out bytes.Buffer
	err = checkContent(context.Background(), &out, cfg, store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 categories")

	report := out.String()
	assert.Contains(t, report, "✗ posts (posts/index.json)")
	assert.Contains(t, report, "posts/hello.md")
	assert.Contains(t, report, "posts/rust.md")
	assert.Contains(t, report, "✗ projects (projects/index.json)")
	assert.Contains(t, report, "[malformed_index]")
}

func TestWriteVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeVersion(&out, "text", false, false))
	assert.Equal(t, "folio "+version.GetShortVersion()+"\n", out.String())

	out.Reset()
	require.NoError(t, writeVersion(&out, "text", true, false))
	assert.Equal(t, version.GetShortVersion()+"\n", out.String())

	out.Reset()
	require.NoError(t, writeVersion(&out, "text", false, true))
	assert.True(t, strings.HasPrefix(out.String(), "folio "))
	assert.Contains(t, out.String(), "Build type: ")

	out.Reset()
	require.NoError(t, writeVersion(&out, "json", false, false))
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, version.GetVersion(), info.Version)

	out.Reset()
	require.NoError(t, writeVersion(&out, "yaml", false, false))
	assert.Contains(t, out.String(), "go_version:")

	assert.Error(t, writeVersion(&out, "xml", false, false))
}

func TestMarshalConfig(t *testing.T) {
	data, err := marshalConfig(config.Default())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "server")
	assert.Contains(t, decoded, "content")
	assert.Contains(t, string(data), "fragment_header: HX-Request")
	assert.Contains(t, string(data), "trust: hardened")
}
