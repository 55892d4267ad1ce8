package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRule(t *testing.T) {
	t.Run("flags fold into a conjunction", func(t *testing.T) {
		rule, err := BuildRule(FindOptions{NameSuffix: ".go", ContentHas: "func"})
		require.NoError(t, err)
		assert.Equal(t, `(name_suffix(".go") && content_has("func"))`, rule.String())
	})

	t.Run("size flags accept human byte counts", func(t *testing.T) {
		rule, err := BuildRule(FindOptions{MinSize: "1KB", MaxSize: "1MB"})
		require.NoError(t, err)
		assert.Contains(t, rule.String(), "size_in")

		_, err = BuildRule(FindOptions{MinSize: "bogus"})
		assert.ErrorContains(t, err, "bad --min-size")
	})

	t.Run("rules file wins", func(t *testing.T) {
		path := writeDocument(t, "rule.yaml", "name_suffix: .md")
		rule, err := BuildRule(FindOptions{RulesPath: path, ContentHas: "ignored"})
		require.NoError(t, err)
		assert.Equal(t, `name_suffix(".md")`, rule.String())
	})

	t.Run("no predicates is an error", func(t *testing.T) {
		_, err := BuildRule(FindOptions{})
		assert.ErrorContains(t, err, "no rule given")
	})
}

func TestRunFind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.go"), []byte("package a\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool"), []byte("#!/bin/sh\n"), 0o755))

	t.Run("prints matches and a summary", func(t *testing.T) {
		var out bytes.Buffer
		err := RunFind(context.Background(), FindOptions{
			Root:       dir,
			NameSuffix: ".go",
			Out:        &out,
		})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "src/a.go\n")
		assert.Contains(t, out.String(), "1 of 3 files matched")
	})

	t.Run("executable flag matches by mode", func(t *testing.T) {
		var out bytes.Buffer
		err := RunFind(context.Background(), FindOptions{
			Root:       dir,
			Executable: true,
			JSON:       true,
			Out:        &out,
		})
		require.NoError(t, err)

		var res findResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		assert.Equal(t, []string{"tool"}, res.Matches)
		assert.Equal(t, 3, res.Checked)
	})
}
