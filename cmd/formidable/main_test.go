package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const signup = `<form name="signup">
<input type="email" name="email" label="Email" required>
<input type="number" name="age" min="18">
</form>
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeForm(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formidable.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  mode: memory\nlanguage: fr\n"), 0o644))

	cfg, err := loadConfig(path, nil)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.GetString(cfgKeyCacheMode))
	require.Equal(t, "fr", cfg.GetString(cfgKeyLanguage))

	_, err = loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	path := writeForm(t, signup)
	out, err := run(t, "render", "--cache", "memory", path)
	require.NoError(t, err)
	require.Contains(t, out, `name="formidable_signup"`)
	require.True(t, strings.HasSuffix(out, "</form>\n"))
}

func TestCheck(t *testing.T) {
	path := writeForm(t, signup)

	out, err := run(t, "check", "--cache", "none", path, "--set", "email=ada@example.com", "--set", "age=12")
	require.True(t, errors.Is(err, errCheckFailed))
	require.Contains(t, out, "age must be at least 18")

	checkSet = nil
	out, err = run(t, "check", "--cache", "none", path, "--set", "email=ada@example.com", "--set", "age=30")
	require.NoError(t, err)
	require.Contains(t, out, `"valid": true`)
}

func TestLint(t *testing.T) {
	good := writeForm(t, signup)
	bad := writeForm(t, `<input type="text" name="x" data-visible-when="a ==">`)

	out, err := run(t, "lint", "--cache", "none", good, bad)
	require.Error(t, err)
	require.Contains(t, out, bad+": x:")
	require.NotContains(t, out, good+":")
}
