// Package signing resolves the release signing configuration of an Android
// application from its key.properties file.
package signing

// Recognized property keys.
const (
	KeyAlias      = "keyAlias"
	KeyPassword   = "keyPassword"
	StoreFile     = "storeFile"
	StorePassword = "storePassword"
)

// Fields lists the recognized keys in the order packaging reads them.
var Fields = []string{KeyAlias, KeyPassword, StoreFile, StorePassword}

const maskedSecret = "****"

// Secret is a password value. It prints masked; use Reveal for the raw text.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return maskedSecret
}

func (s Secret) GoString() string {
	return `signing.Secret("` + s.String() + `")`
}

// MarshalText keeps secrets masked in JSON and log encoders.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reveal returns the unmasked value.
func (s Secret) Reveal() string {
	return string(s)
}

// SigningCredentials is the result of loading a properties file.
// A field is either present with a non-empty value or absent.
// Values are never mutated after Load returns.
type SigningCredentials struct {
	source string
	found  bool
	values map[string]string
}

func newCredentials(source string, found bool, values map[string]string) *SigningCredentials {
	if values == nil {
		values = map[string]string{}
	}
	return &SigningCredentials{source: source, found: found, values: values}
}

// Source returns the properties path the credentials were loaded from.
func (c *SigningCredentials) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Found reports whether the properties file existed.
func (c *SigningCredentials) Found() bool {
	return c != nil && c.found
}

// Lookup returns the raw value of a recognized field.
func (c *SigningCredentials) Lookup(field string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[field]
	return v, ok
}

// Has reports whether field is present.
func (c *SigningCredentials) Has(field string) bool {
	_, ok := c.Lookup(field)
	return ok
}

func (c *SigningCredentials) require(field string) (string, error) {
	v, ok := c.Lookup(field)
	if !ok {
		return "", &MissingCredentialError{Field: field}
	}
	return v, nil
}

// KeyAlias returns the key alias or a *MissingCredentialError.
func (c *SigningCredentials) KeyAlias() (string, error) {
	return c.require(KeyAlias)
}

// KeyPassword returns the key password or a *MissingCredentialError.
func (c *SigningCredentials) KeyPassword() (Secret, error) {
	v, err := c.require(KeyPassword)
	return Secret(v), err
}

// StoreFile returns the resolved keystore path or a *MissingCredentialError.
func (c *SigningCredentials) StoreFile() (string, error) {
	return c.require(StoreFile)
}

// StorePassword returns the keystore password or a *MissingCredentialError.
func (c *SigningCredentials) StorePassword() (Secret, error) {
	v, err := c.require(StorePassword)
	return Secret(v), err
}

// Missing returns the absent fields in Fields order.
func (c *SigningCredentials) Missing() []string {
	var missing []string
	for _, f := range Fields {
		if !c.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Available reports whether all four fields are present.
func (c *SigningCredentials) Available() bool {
	return len(c.Missing()) == 0
}

// IsEmpty reports whether no field is present.
func (c *SigningCredentials) IsEmpty() bool {
	return c == nil || len(c.values) == 0
}

func (c *SigningCredentials) clone() *SigningCredentials {
	values := make(map[string]string, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	return newCredentials(c.source, c.found, values)
}
