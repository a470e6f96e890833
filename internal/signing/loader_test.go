package signing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/project"

func newTestLoader(t *testing.T, content string, opts ...Option) *Loader {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(root, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, DefaultPropertiesFile), []byte(content), 0o600))
	return NewLoader(root, append([]Option{WithFs(fs)}, opts...)...)
}

// unreadableFs reports files as existing but fails to open them.
type unreadableFs struct {
	afero.Fs
}

func (unreadableFs) Open(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
}

func TestLoadAllFields(t *testing.T) {
	l := newTestLoader(t, "keyAlias=foo\nkeyPassword=bar\nstoreFile=my.jks\nstorePassword=baz")

	creds, err := l.Load()
	require.NoError(t, err)
	assert.True(t, creds.Found())
	assert.True(t, creds.Available())
	assert.Equal(t, "/project/key.properties", creds.Source())

	alias, err := creds.KeyAlias()
	require.NoError(t, err)
	assert.Equal(t, "foo", alias)

	keyPassword, err := creds.KeyPassword()
	require.NoError(t, err)
	assert.Equal(t, "bar", keyPassword.Reveal())

	storeFile, err := creds.StoreFile()
	require.NoError(t, err)
	assert.Equal(t, "/project/my.jks", storeFile)

	storePassword, err := creds.StorePassword()
	require.NoError(t, err)
	assert.Equal(t, "baz", storePassword.Reveal())
}

func TestLoadMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLoader(root, WithFs(fs))

	creds, err := l.Load()
	require.NoError(t, err)
	assert.False(t, creds.Found())
	assert.True(t, creds.IsEmpty())
	assert.Equal(t, Fields, creds.Missing())
}

func TestLoadEmptyFile(t *testing.T) {
	l := newTestLoader(t, "")

	creds, err := l.Load()
	require.NoError(t, err)
	assert.True(t, creds.Found())
	assert.True(t, creds.IsEmpty())
	for _, f := range Fields {
		assert.False(t, creds.Has(f), f)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:     "comments and unknown keys",
			content:  "# release key\n! legacy comment\nkeyAlias=upload\nflavor=prod\n",
			expected: map[string]string{KeyAlias: "upload"},
		},
		{
			name:     "colon and whitespace separators",
			content:  "keyAlias: upload\nkeyPassword secret\n",
			expected: map[string]string{KeyAlias: "upload", KeyPassword: "secret"},
		},
		{
			name:     "crlf line endings",
			content:  "keyAlias=upload\r\nstorePassword=pw\r\n",
			expected: map[string]string{KeyAlias: "upload", StorePassword: "pw"},
		},
		{
			name:     "cr line endings",
			content:  "keyAlias=upload\rstorePassword=pw\r",
			expected: map[string]string{KeyAlias: "upload", StorePassword: "pw"},
		},
		{
			name:     "byte order mark",
			content:  "\ufeffkeyAlias=foo\n",
			expected: map[string]string{KeyAlias: "foo"},
		},
		{
			name:     "continuation line",
			content:  "keyPassword=abc\\\n    def\n",
			expected: map[string]string{KeyPassword: "abcdef"},
		},
		{
			name:     "unicode escape",
			content:  "keyAlias=caf\\u00e9\n",
			expected: map[string]string{KeyAlias: "café"},
		},
		{
			name:     "placeholders are not expanded",
			content:  "keyPassword=${ENV_PASSWORD}\n",
			expected: map[string]string{KeyPassword: "${ENV_PASSWORD}"},
		},
		{
			name:     "empty value is absent",
			content:  "keyAlias=\nstoreFile=\n",
			expected: map[string]string{},
		},
		{
			name:     "last duplicate wins",
			content:  "keyAlias=one\nkeyAlias=two\n",
			expected: map[string]string{KeyAlias: "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := newTestLoader(t, tt.content).Load()
			require.NoError(t, err)
			for _, f := range Fields {
				v, ok := creds.Lookup(f)
				want, wantOK := tt.expected[f]
				assert.Equal(t, wantOK, ok, f)
				assert.Equal(t, want, v, f)
			}
		})
	}
}

func TestLoadParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int // 0 skips the line check
	}{
		{name: "empty key", content: "keyAlias=foo\n=bar\n", line: 2},
		{name: "empty key with colon", content: "  : bar\n", line: 1},
		{name: "empty key after cr", content: "keyAlias=foo\r=bar\r", line: 2},
		{name: "empty key after byte order mark", content: "\ufeff=bar\n", line: 1},
		{name: "bad unicode escape", content: "keyAlias=\\u12G4\n"},
		{name: "invalid utf-8", content: "keyAlias=foo\nkeyPassword=\xff\xfe\n", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader(t, tt.content).Load()
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			assert.Equal(t, "/project/key.properties", parseErr.Path)
			if tt.line > 0 {
				assert.Equal(t, tt.line, parseErr.Line)
			}
		})
	}
}

func TestLoadContinuationIsNotEmptyKey(t *testing.T) {
	creds, err := newTestLoader(t, "keyPassword=abc\\\n=def\n").Load()
	require.NoError(t, err)
	v, _ := creds.Lookup(KeyPassword)
	assert.Equal(t, "abc=def", v)
}

func TestLoadUnreadableFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/key.properties", []byte("keyAlias=foo"), 0o600))

	_, err := NewLoader(root, WithFs(unreadableFs{fs})).Load()
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "expected IOError, got %T", err)
	assert.Equal(t, "read", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestLoadOptions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/signing/release.properties",
		[]byte("storeFile=../keys/upload.jks\n"), 0o600))

	l := NewLoader(root,
		WithFs(fs),
		WithPropertiesFile("signing/release.properties"),
		WithStoreBase("app"),
		WithLogger(nil),
	)
	assert.Equal(t, "/project/signing/release.properties", l.Path())
	assert.Equal(t, "/project/app", l.StoreBase())
	assert.Same(t, fs, l.Fs())

	creds, err := l.Load()
	require.NoError(t, err)
	storeFile, err := creds.StoreFile()
	require.NoError(t, err)
	assert.Equal(t, "/project/keys/upload.jks", storeFile)
}

func TestLoaderDefaultFs(t *testing.T) {
	assert.IsType(t, &afero.OsFs{}, NewLoader(root).Fs())
}

func TestLoadAbsoluteStoreFile(t *testing.T) {
	creds, err := newTestLoader(t, "storeFile=/keys/upload.jks\n").Load()
	require.NoError(t, err)
	storeFile, err := creds.StoreFile()
	require.NoError(t, err)
	assert.Equal(t, "/keys/upload.jks", storeFile)
}

func TestResolveStoreFile(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		expected string
	}{
		{name: "relative", base: "/project", path: "my.jks", expected: "/project/my.jks"},
		{name: "parent dir", base: "/project/app", path: "../my.jks", expected: "/project/my.jks"},
		{name: "absolute unchanged", base: "/project", path: "/etc/keys/my.jks", expected: "/etc/keys/my.jks"},
		{name: "absolute cleaned", base: "/project", path: "/etc//keys/./my.jks", expected: "/etc/keys/my.jks"},
		{name: "empty stays unresolved", base: "/project", path: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStoreFile(tt.base, tt.path)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, ResolveStoreFile("/elsewhere", got), "resolution must be idempotent")
		})
	}
}
