package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(zap.NewNop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPublishes(t *testing.T) {
	chdirTest(t, t.TempDir())
	outDir := filepath.Join(t.TempDir(), "site")

	out, err := runCmd(t,
		"--title", "Hello, World!",
		"--category", "Essays",
		"--subcategory", "Personal Opinions",
		"--also", "Global Trends|",
		"--date", "May 2024",
		"--content_text", "First post.",
		"--outdir", outDir,
	)
	require.NoError(t, err)

	postPath := filepath.Join(outDir, "posts", "hello-world.html")
	indexPath := filepath.Join(outDir, "index.html")
	assert.Equal(t, "Created: "+postPath+"\nUpdated: "+indexPath+"\n", out)

	doc := parseDoc(t, readFile(t, indexPath))
	article := findFirst(doc, isCard)
	assert.Equal(t, "hello-world", attrOf(t, article, "data-slug"))
	assert.Equal(t, "essays,global-trends", attrOf(t, article, "data-cat"))
	assert.Equal(t, "personal-opinions,", attrOf(t, article, "data-sub"))
	assert.FileExists(t, postPath)
}

func TestCommandUsesConfig(t *testing.T) {
	dir := t.TempDir()
	conf := "site_title: Configured\nout_dir: public\nbody_format: markdown\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(conf), 0644))
	chdirTest(t, t.TempDir())

	_, err := runCmd(t,
		"--config", filepath.Join(dir, "site.yaml"),
		"--title", "Configured Post",
		"--category", "Essays",
		"--date", "June 2024",
		"--content_text", "Some *emphasis*.",
	)
	require.NoError(t, err)

	page := readFile(t, filepath.Join(dir, "public", "posts", "configured-post.html"))
	assert.Contains(t, page, "<em>emphasis</em>")
	assert.Contains(t, page, "Configured Post — Configured")
}

func TestCommandErrors(t *testing.T) {
	chdirTest(t, t.TempDir())
	outDir := t.TempDir()

	_, err := runCmd(t, "--title", "T", "--category", "C", "--date", "D", "--outdir", outDir)
	assert.ErrorIs(t, err, errMissingContent)

	_, err = runCmd(t, "--category", "C", "--date", "D", "--content_text", "x", "--outdir", outDir)
	assert.ErrorIs(t, err, errMissingField)

	_, err = runCmd(t, "--title", "T", "--category", "C", "--date", "D",
		"--content_text", "x", "--content_file", "body.txt", "--outdir", outDir)
	assert.Error(t, err)

	_, err = runCmd(t, "stray-argument")
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(outDir, "index.html"))
	assert.True(t, os.IsNotExist(err))
}

// chdirTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it
// changes the working directory and restores it when the test ends.
func chdirTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
