package signing

import (
	"fmt"
	"sort"
)

// Build variant names.
const (
	VariantDebug   = "debug"
	VariantRelease = "release"
)

// SigningConfig is a fully populated credential set handed to packaging.
type SigningConfig struct {
	KeyAlias      string `json:"keyAlias"`
	KeyPassword   Secret `json:"keyPassword"`
	StoreFile     string `json:"storeFile"`
	StorePassword Secret `json:"storePassword"`
}

// Binder maps build variants to credential sets. The mapping is fixed when
// the Binder is created; a nil entry means the variant is not signed with
// these credentials (debug uses the toolchain's own key).
type Binder struct {
	bindings map[string]*SigningCredentials
}

// NewBinder binds release to creds and leaves debug unbound.
func NewBinder(creds *SigningCredentials) *Binder {
	return &Binder{
		bindings: map[string]*SigningCredentials{
			VariantDebug:   nil,
			VariantRelease: creds,
		},
	}
}

// Variants returns the known variant names, sorted.
func (b *Binder) Variants() []string {
	names := make([]string, 0, len(b.bindings))
	for name := range b.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bound reports whether variant signs with the loaded credentials.
func (b *Binder) Bound(variant string) (bool, error) {
	creds, ok := b.bindings[variant]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	return creds != nil, nil
}

// Resolve returns the signing config for variant. Unbound variants yield
// (nil, nil). A bound variant with an absent field fails with
// *MissingCredentialError instead of producing an unsigned package.
func (b *Binder) Resolve(variant string) (*SigningConfig, error) {
	bound, err := b.Bound(variant)
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, nil
	}
	creds := b.bindings[variant]

	alias, err := creds.KeyAlias()
	if err != nil {
		return nil, forVariant(err, variant)
	}
	keyPassword, err := creds.KeyPassword()
	if err != nil {
		return nil, forVariant(err, variant)
	}
	storeFile, err := creds.StoreFile()
	if err != nil {
		return nil, forVariant(err, variant)
	}
	storePassword, err := creds.StorePassword()
	if err != nil {
		return nil, forVariant(err, variant)
	}

	return &SigningConfig{
		KeyAlias:      alias,
		KeyPassword:   keyPassword,
		StoreFile:     storeFile,
		StorePassword: storePassword,
	}, nil
}

func forVariant(err error, variant string) error {
	if missing, ok := err.(*MissingCredentialError); ok {
		return &MissingCredentialError{Variant: variant, Field: missing.Field}
	}
	return err
}
