package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/semmy-space/signcfg/internal/config"
	"github.com/semmy-space/signcfg/internal/output"
	"github.com/semmy-space/signcfg/internal/secrets"
	"github.com/semmy-space/signcfg/internal/signing"
)

type testEnv struct {
	root    string
	cfg     *config.Config
	globals *Globals
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	fp      *FormatterProvider
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()
	root := t.TempDir()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	return &testEnv{
		root:    root,
		cfg:     cfg,
		globals: &Globals{ProjectRoot: root, Output: mode},
		stdout:  &stdout,
		stderr:  &stderr,
		fp:      &FormatterProvider{Formatter: output.NewWithWriters(mode, &stdout, &stderr)},
	}
}

func (e *testEnv) writeProperties(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.root, "key.properties"), []byte(content), 0600))
}

// useFileStore points the secrets commands at an encrypted file in a temp dir
func useFileStore(t *testing.T) *secrets.FileStore {
	t.Helper()
	store, err := secrets.NewFileStore(filepath.Join(t.TempDir(), "credentials.enc"), "test-password")
	require.NoError(t, err)

	prev := openStore
	openStore = func(string) (secrets.Store, error) { return store, nil }
	t.Cleanup(func() { openStore = prev })
	return store
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var cliErr *output.CLIError
	require.True(t, errors.As(err, &cliErr), "expected CLIError, got %T: %v", err, err)
	return cliErr.ExitCode
}

const fullProperties = "keyAlias=upload\nkeyPassword=kp-secret\nstoreFile=upload.jks\nstorePassword=sp-secret\n"

func TestShowMasksPasswords(t *testing.T) {
	env := newTestEnv(t, "json")
	env.writeProperties(t, fullProperties)

	require.NoError(t, (&ShowCmd{}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))

	out := env.stdout.String()
	assert.NotContains(t, out, "kp-secret")
	assert.NotContains(t, out, "sp-secret")

	var envelope struct {
		Data  []credentialItem `json:"data"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &envelope))
	require.Equal(t, 4, envelope.Count)
	assert.Equal(t, credentialItem{Field: "keyAlias", Value: "upload", Status: "set"}, envelope.Data[0])
	assert.Equal(t, "****", envelope.Data[1].Value)
	assert.Equal(t, filepath.Join(env.root, "upload.jks"), envelope.Data[2].Value)
}

func TestShowReveal(t *testing.T) {
	env := newTestEnv(t, "plain")
	env.writeProperties(t, fullProperties)

	require.NoError(t, (&ShowCmd{Reveal: true}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))
	assert.Contains(t, env.stdout.String(), "keyPassword\tkp-secret\tset")
}

func TestShowMissingFile(t *testing.T) {
	env := newTestEnv(t, "plain")

	require.NoError(t, (&ShowCmd{}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))
	assert.Contains(t, env.stdout.String(), "keyAlias\t\tmissing")
	assert.Contains(t, env.stderr.String(), "does not exist")
}

func TestShowParseError(t *testing.T) {
	env := newTestEnv(t, "plain")
	env.writeProperties(t, "keyAlias=upload\n=oops\n")

	err := (&ShowCmd{}).Run(env.cfg, env.fp, env.globals, zap.NewNop())
	assert.Equal(t, output.ExitDataError, exitCode(t, err))

	var parseErr *signing.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestCheckRelease(t *testing.T) {
	env := newTestEnv(t, "json")
	env.writeProperties(t, fullProperties)

	require.NoError(t, (&CheckCmd{Variant: "release"}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))

	var result checkResult
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &result))
	assert.True(t, result.Signed)
	assert.Equal(t, "upload", result.KeyAlias)
	assert.Equal(t, filepath.Join(env.root, "upload.jks"), result.StoreFile)
}

func TestCheckReleaseMissingAlias(t *testing.T) {
	env := newTestEnv(t, "plain")
	env.writeProperties(t, "keyPassword=kp\nstoreFile=upload.jks\nstorePassword=sp\n")

	err := (&CheckCmd{Variant: "release"}).Run(env.cfg, env.fp, env.globals, zap.NewNop())
	assert.Equal(t, output.ExitMissingCredential, exitCode(t, err))

	var missing *signing.MissingCredentialError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, signing.KeyAlias, missing.Field)
	assert.Empty(t, env.stdout.String())
}

func TestCheckDebugWithoutFile(t *testing.T) {
	env := newTestEnv(t, "json")

	require.NoError(t, (&CheckCmd{Variant: "debug"}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))

	var result checkResult
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &result))
	assert.Equal(t, "debug", result.Variant)
	assert.False(t, result.Signed)
}

func TestCheckUnknownVariant(t *testing.T) {
	env := newTestEnv(t, "plain")

	err := (&CheckCmd{Variant: "staging"}).Run(env.cfg, env.fp, env.globals, zap.NewNop())
	assert.Equal(t, output.ExitUsage, exitCode(t, err))
}

func TestCheckRequireKeystore(t *testing.T) {
	env := newTestEnv(t, "plain")
	env.writeProperties(t, fullProperties)

	cmd := &CheckCmd{Variant: "release", RequireKeystore: true}
	err := cmd.Run(env.cfg, env.fp, env.globals, zap.NewNop())
	assert.Equal(t, output.ExitNotFound, exitCode(t, err))

	require.NoError(t, os.WriteFile(filepath.Join(env.root, "upload.jks"), []byte("jks"), 0600))
	require.NoError(t, cmd.Run(env.cfg, env.fp, env.globals, zap.NewNop()))
}

func TestCheckRequireKeystoreUsesLoaderFs(t *testing.T) {
	env := newTestEnv(t, "json")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(env.root, "key.properties"), []byte(fullProperties), 0o600))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(env.root, "upload.jks"), []byte("jks"), 0o600))

	prev := projectFs
	projectFs = fs
	t.Cleanup(func() { projectFs = prev })

	cmd := &CheckCmd{Variant: "release", RequireKeystore: true}
	require.NoError(t, cmd.Run(env.cfg, env.fp, env.globals, zap.NewNop()))

	require.NoError(t, fs.Remove(filepath.Join(env.root, "upload.jks")))
	err := cmd.Run(env.cfg, env.fp, env.globals, zap.NewNop())
	assert.Equal(t, output.ExitNotFound, exitCode(t, err))
}

func TestCheckUsesConfigOverrides(t *testing.T) {
	env := newTestEnv(t, "json")
	require.NoError(t, os.MkdirAll(filepath.Join(env.root, "android", "app"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "android", "key.properties"),
		[]byte(fullProperties), 0600))

	env.cfg.PropertiesFile = "android/key.properties"
	env.cfg.StoreBase = "android/app"

	require.NoError(t, (&CheckCmd{Variant: "release"}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))

	var result checkResult
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &result))
	assert.Equal(t, filepath.Join(env.root, "android", "app", "upload.jks"), result.StoreFile)
}

func TestCheckFillsPasswordsFromStore(t *testing.T) {
	env := newTestEnv(t, "json")
	env.writeProperties(t, "keyAlias=upload\nstoreFile=upload.jks\n")
	store := useFileStore(t)
	require.NoError(t, store.Set("upload/keyPassword", "kp"))
	require.NoError(t, store.Set("upload/storePassword", "sp"))

	cmd := &CheckCmd{Variant: "release"}
	err := cmd.Run(env.cfg, env.fp, env.globals, zap.NewNop())
	assert.Equal(t, output.ExitMissingCredential, exitCode(t, err))

	env.globals.Keyring = true
	require.NoError(t, cmd.Run(env.cfg, env.fp, env.globals, zap.NewNop()))
}

func TestVariants(t *testing.T) {
	env := newTestEnv(t, "plain")
	env.writeProperties(t, "keyAlias=upload\nstoreFile=upload.jks\n")

	require.NoError(t, (&VariantsCmd{}).Run(env.cfg, env.fp, env.globals, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Variant\tSigning\tReady\tMissing", lines[0])
	assert.Equal(t, "debug\ttoolchain debug key\ttrue\t-", lines[1])
	assert.Equal(t, "release\t"+filepath.Join(env.root, "key.properties")+"\tfalse\tkeyPassword,storePassword", lines[2])
}

func TestToCLIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "parse", err: &signing.ParseError{Path: "p", Line: 1, Err: errors.New("x")}, code: output.ExitDataError},
		{name: "io", err: &signing.IOError{Op: "read", Path: "p", Err: os.ErrPermission}, code: output.ExitIOError},
		{name: "missing", err: &signing.MissingCredentialError{Variant: "release", Field: "storeFile"}, code: output.ExitMissingCredential},
		{name: "unknown variant", err: signing.ErrUnknownVariant, code: output.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toCLIError(tt.err)
			assert.Equal(t, tt.code, exitCode(t, err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	var cliErr *output.CLIError
	require.ErrorAs(t, toCLIError(signing.ErrUnknownVariant), &cliErr)
	assert.Equal(t, "Known variants: debug, release", cliErr.Hint)

	plain := errors.New("other")
	assert.Same(t, plain, toCLIError(plain))
}

func TestMissingHint(t *testing.T) {
	assert.Contains(t, missingHint(signing.KeyPassword), "signcfg secrets set")
	assert.NotContains(t, missingHint(signing.KeyAlias), "secrets")
}
