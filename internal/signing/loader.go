package signing

import (
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultPropertiesFile is the conventional file name under the project root.
const DefaultPropertiesFile = "key.properties"

// Loader reads signing credentials from a properties file at a fixed
// location relative to the project root.
type Loader struct {
	root      string
	file      string
	storeBase string
	fs        afero.Fs
	log       *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPropertiesFile overrides the properties file name. Relative names are
// taken from the project root.
func WithPropertiesFile(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.file = name
		}
	}
}

// WithStoreBase sets the directory that relative storeFile values are
// resolved against. Relative dirs are taken from the project root.
func WithStoreBase(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.storeBase = dir
		}
	}
}

// WithFs replaces the filesystem, mainly for tests.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) {
		if fs != nil {
			l.fs = fs
		}
	}
}

// WithLogger attaches a logger for load diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a Loader for the project rooted at root.
// A relative root is made absolute against the working directory.
func NewLoader(root string, opts ...Option) *Loader {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	l := &Loader{
		root: filepath.Clean(root),
		file: DefaultPropertiesFile,
		fs:   afero.NewOsFs(),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the properties file location.
func (l *Loader) Path() string {
	return ResolveStoreFile(l.root, l.file)
}

// Fs returns the filesystem the loader reads from.
func (l *Loader) Fs() afero.Fs {
	return l.fs
}

// StoreBase returns the directory storeFile values are resolved against.
func (l *Loader) StoreBase() string {
	if l.storeBase == "" {
		return l.root
	}
	return ResolveStoreFile(l.root, l.storeBase)
}

// Load reads the properties file. A missing file is not an error: it yields
// empty credentials with Found() == false. Absent keys are left for the
// consumer to report.
func (l *Loader) Load() (*SigningCredentials, error) {
	path := l.Path()

	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if !exists {
		l.log.Debug("properties file not found, using empty credentials", zap.String("path", path))
		return newCredentials(path, false, nil), nil
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	values, err := parseProperties(path, data)
	if err != nil {
		return nil, err
	}

	if storeFile, ok := values[StoreFile]; ok {
		values[StoreFile] = ResolveStoreFile(l.StoreBase(), storeFile)
	}

	creds := newCredentials(path, true, values)
	l.log.Debug("loaded signing properties",
		zap.String("path", path),
		zap.Strings("missing", creds.Missing()),
	)
	return creds, nil
}

// ResolveStoreFile resolves p against base into a cleaned absolute path.
// Absolute paths are only cleaned, so resolving twice is a no-op.
func ResolveStoreFile(base, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
