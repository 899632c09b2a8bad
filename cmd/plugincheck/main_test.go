package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugincheck/pkg/presenter"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func fixturePackage(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"agents/reviewer.md":         "---\nname: reviewer\ndescription: Reviews pull requests\ntools: Read, Grep\n---\n\nYou review code.\n",
		"commands/deploy.md":         "---\ndescription: Deploy the current branch\n---\n\nDeploy $ARGUMENTS\n",
		"skills/pdf/SKILL.md":        "---\nname: pdf\ndescription: Extract text from PDF files\n---\n\n# PDF\n",
		".claude-plugin/plugin.json": `{"name": "demo", "version": "1.0.0", "description": "Demo plugin"}`,
	})
	return root
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append(args, "--color", "never"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheckPass(t *testing.T) {
	root := fixturePackage(t)

	code, out, _ := execute(t, "check", root)
	assert.Equal(t, exitPass, code)
	assert.Contains(t, out, "PASS agent: 1 of 1 documents conform (agents/*.md, schema: builtin)")
	assert.Contains(t, out, "PASS plugin: 1 of 1 documents conform")
	assert.Contains(t, out, "all 4 kinds conform")
}

func TestDefaultActionIsCheck(t *testing.T) {
	root := fixturePackage(t)

	code, out, _ := execute(t, "--root", root)
	assert.Equal(t, exitPass, code)
	assert.Contains(t, out, "all 4 kinds conform")
}

func TestCheckFail(t *testing.T) {
	root := fixturePackage(t)
	writeFiles(t, root, map[string]string{
		"agents/broken.md": "---\nname: broken\n---\n",
		"agents/plain.md":  "no metadata here\n",
	})

	code, out, _ := execute(t, "check", root)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, out, "FAIL agent: 2 of 3 documents failed")
	assert.Contains(t, out, "agents/broken.md: 1 violation(s)")
	assert.Contains(t, out, "/description")
	assert.Contains(t, out, "agents/plain.md: metadata absent")
	assert.Contains(t, out, "conformance check failed")
}

func TestCheckNoDocumentsIsFault(t *testing.T) {
	root := fixturePackage(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "commands")))

	code, _, errOut := execute(t, "check", root)
	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "no documents found")
}

func TestCheckJSONOutput(t *testing.T) {
	root := fixturePackage(t)

	code, out, _ := execute(t, "check", root, "-o", "json", "--kind", "agent,skill")
	assert.Equal(t, exitPass, code)

	var report presenter.JSONReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Pass)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Kinds, 2)
	assert.Equal(t, "agent", report.Kinds[0].Kind)
	assert.Equal(t, "skill", report.Kinds[1].Kind)
}

func TestCheckExclude(t *testing.T) {
	root := fixturePackage(t)
	writeFiles(t, root, map[string]string{
		"agents/draft-idea.md": "not ready\n",
	})

	code, _, _ := execute(t, "check", root, "--exclude", "agents/draft-*")
	assert.Equal(t, exitPass, code)
}

func TestCheckPackageSchema(t *testing.T) {
	root := fixturePackage(t)
	writeFiles(t, root, map[string]string{
		"schemas/command.schema.json": `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["description", "argument-hint"]
}`,
	})

	code, out, _ := execute(t, "check", root)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, out, "FAIL command: 1 of 1 documents failed (commands/*.md, schema: package)")
	assert.Contains(t, out, "/argument-hint")
}

func TestConfigFileInRoot(t *testing.T) {
	root := fixturePackage(t)
	writeFiles(t, root, map[string]string{
		"plugincheck.yaml": "kinds: [skills]\noutput: json\n",
	})

	code, out, _ := execute(t, "check", root)
	assert.Equal(t, exitPass, code)

	var report presenter.JSONReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Kinds, 1)
	assert.Equal(t, "skill", report.Kinds[0].Kind)
}

func TestInvalidConfiguration(t *testing.T) {
	root := fixturePackage(t)

	code, _, errOut := execute(t, "check", root, "-o", "xml")
	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "invalid output format 'xml'")
}

func TestMissingRoot(t *testing.T) {
	code, _, errOut := execute(t, "check", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "failed to access package root")
}

func TestList(t *testing.T) {
	root := fixturePackage(t)
	writeFiles(t, root, map[string]string{
		"agents/plain.md": "no metadata here\n",
	})

	code, out, _ := execute(t, "list", root)
	assert.Equal(t, exitPass, code)
	assert.Contains(t, out, "reviewer")
	assert.Contains(t, out, "deploy")
	assert.Contains(t, out, "Extract text from PDF files")
	assert.Contains(t, out, "demo")
	assert.NotContains(t, out, "plain")
	assert.Contains(t, out, "1 document(s) not listed")
}

func TestSchemaPrint(t *testing.T) {
	code, out, _ := execute(t, "schema", "agents")
	assert.Equal(t, exitPass, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.ElementsMatch(t, []any{"name", "description"}, doc["required"])

	code, _, errOut := execute(t, "schema", "hooks")
	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "unknown document kind 'hooks'")
}

func TestSchemaWriteRoundTrip(t *testing.T) {
	root := fixturePackage(t)
	dir := filepath.Join(t.TempDir(), "schemas")

	code, _, _ := execute(t, "schema", "--write", dir)
	require.Equal(t, exitPass, code)
	for _, name := range []string{"agent", "command", "skill", "plugin"} {
		assert.FileExists(t, filepath.Join(dir, name+".schema.json"))
	}

	code, _, errOut := execute(t, "schema", "--write", dir)
	assert.Equal(t, exitFault, code)
	assert.Contains(t, errOut, "already exists")

	code, out, _ := execute(t, "check", root, "--schemas-dir", dir)
	assert.Equal(t, exitPass, code)
	assert.Contains(t, out, "schema: directory")
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version")
	assert.Equal(t, exitPass, code)
	assert.Contains(t, out, `"gitCommit"`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitPass, exitCode(nil))
	assert.Equal(t, exitFail, exitCode(&exitError{code: exitFail, err: errCheckFailed}))
	assert.Equal(t, exitFail, exitCode(errors.Wrap(&exitError{code: exitFail, err: errCheckFailed}, "watch")))
	assert.Equal(t, exitFault, exitCode(errors.New("bad flag")))
}
