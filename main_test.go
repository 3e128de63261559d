package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/service"
)

const categoriesYAML = `
- id: shoes
  name: Shoes
  iconKey: shoe
  subCategories:
    - title: Running
      items: [Trail, Road]
- id: bags
  name: Bags
  promoText: Summer bags
`

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data_dir: "+dir+"\nsecret_backend: memory\n"), 0o644))
	t.Setenv("PAGEBUILDER_CONFIG", cfgPath)
	t.Setenv("GEMINI_API_KEY", "")
	return dir
}

func TestReadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(categoriesYAML), 0o644))

	cats, err := readCategories(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "shoe", cats[0].IconKey)
	assert.Equal(t, []string{"Trail", "Road"}, cats[0].SubCategories[0].Items)
	assert.Equal(t, "Summer bags", cats[1].PromoText)
}

func TestCategoriesLoadThenCurate(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "cats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(categoriesYAML), 0o644))

	assert.Contains(t, runCLI(t, "categories", "load", path), "loaded 2 categories")

	out := runCLI(t, "curate", "--mode", "all", "--json")
	var view service.CurateView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Tabs, 2)
	assert.Equal(t, "shoes", view.Tabs[0].ID)
	assert.Equal(t, "bags", view.Tabs[1].ID)
}

func TestRender_RequiresOut(t *testing.T) {
	setupEnv(t)
	rootCmd.SetArgs([]string{"render"})
	rootCmd.SetOut(&bytes.Buffer{})
	assert.ErrorContains(t, rootCmd.Execute(), "--out is required")
}
