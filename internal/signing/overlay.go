package signing

import (
	"errors"
	"fmt"
)

// SecretLookup fetches a stored secret by key. Implementations return
// notFound (as passed to WithSecrets) when the key does not exist.
type SecretLookup interface {
	Get(key string) (string, error)
}

// SecretKey is the store key holding field for the given key alias.
func SecretKey(alias, field string) string {
	return alias + "/" + field
}

// SecretFields are the fields WithSecrets may fill in.
var SecretFields = []string{KeyPassword, StorePassword}

// WithSecrets returns a copy of creds in which absent passwords are taken
// from store, keyed by the credentials' key alias. Values from the
// properties file always win. Lookups that fail with notFound leave the
// field absent; any other error is returned.
func WithSecrets(creds *SigningCredentials, store SecretLookup, notFound error) (*SigningCredentials, error) {
	if creds == nil {
		return newCredentials("", false, nil), nil
	}
	alias, err := creds.KeyAlias()
	if err != nil || store == nil {
		return creds, nil
	}

	out := creds.clone()
	for _, field := range SecretFields {
		if out.Has(field) {
			continue
		}
		v, err := store.Get(SecretKey(alias, field))
		if err != nil {
			if notFound != nil && errors.Is(err, notFound) {
				continue
			}
			return nil, fmt.Errorf("lookup %s for alias %q: %w", field, alias, err)
		}
		if v != "" {
			out.values[field] = v
		}
	}
	return out, nil
}
