package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// warningShown checks if the file-store warning has already been shown.
// Uses a marker file in the data directory to avoid repeating on every command.
func warningShown() bool {
	_, err := os.Stat(warningMarkerPath())
	return err == nil
}

func warningMarkerPath() string {
	return filepath.Join(xdg.DataHome, ServiceName, ".file-store-warning-shown")
}

// quietMode returns true if the user has suppressed warnings via SIGNCFG_QUIET.
func quietMode() bool {
	v := os.Getenv("SIGNCFG_QUIET")
	return v == "1" || v == "true"
}

// warnOnce prints a message to stderr unless warnings were already shown or silenced.
func warnOnce(msg string) {
	if quietMode() || warningShown() {
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func markWarningsDone() {
	if warningShown() {
		return
	}
	_ = os.MkdirAll(filepath.Dir(warningMarkerPath()), 0700)
	_ = os.WriteFile(warningMarkerPath(), []byte("1"), 0600)
}

// Open returns a Store for the named backend ("auto", "keyring" or "file").
// "auto" tries the OS keyring and falls back to the encrypted file, and goes
// straight to the file under WSL or without a display server.
func Open(backend string) (Store, error) {
	password := os.Getenv("SIGNCFG_STORE_PASSWORD")

	switch backend {
	case BackendFile:
		return NewFileStore("", password)
	case BackendKeyring:
		return NewKeyringStore()
	case BackendAuto, "":
	default:
		return nil, fmt.Errorf("unknown secrets backend: %s", backend)
	}

	if IsWSL() || IsHeadless() {
		warnOnce("Detected WSL/headless environment, using encrypted file storage")
		store, err := NewFileStore("", password)
		if err != nil {
			return nil, err
		}
		markWarningsDone()
		return store, nil
	}

	store, err := NewKeyringStore()
	if err != nil {
		warnOnce(fmt.Sprintf("Keyring unavailable (%v), falling back to encrypted file", err))
		fstore, ferr := NewFileStore("", password)
		if ferr != nil {
			return nil, ferr
		}
		markWarningsDone()
		return fstore, nil
	}
	return store, nil
}

// Describe names the backing storage of s for user-facing messages.
func Describe(s Store) string {
	switch st := s.(type) {
	case *FileStore:
		return "encrypted file " + st.Path()
	case *KeyringStore:
		return "OS keyring"
	default:
		return "custom store"
	}
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true on Linux when neither X11 nor Wayland is available.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
