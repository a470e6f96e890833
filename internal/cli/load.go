package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/semmy-space/signcfg/internal/config"
	"github.com/semmy-space/signcfg/internal/output"
	"github.com/semmy-space/signcfg/internal/secrets"
	"github.com/semmy-space/signcfg/internal/signing"
)

// openStore is swapped out in tests
var openStore = secrets.Open

// projectFs backs every loader the commands create
var projectFs afero.Fs = afero.NewOsFs()

// newLoader builds the loader from flags, then config, then defaults
func newLoader(g *Globals, cfg *config.Config, log *zap.Logger) *signing.Loader {
	properties := g.Properties
	if properties == "" {
		properties = cfg.PropertiesFile
	}
	storeBase := g.StoreBase
	if storeBase == "" {
		storeBase = cfg.StoreBase
	}

	return signing.NewLoader(g.ProjectRoot,
		signing.WithPropertiesFile(properties),
		signing.WithStoreBase(storeBase),
		signing.WithLogger(log),
		signing.WithFs(projectFs),
	)
}

// loadCredentials loads the properties file and, when enabled, fills missing
// passwords from the secrets store. Errors come back as *output.CLIError.
func loadCredentials(g *Globals, cfg *config.Config, log *zap.Logger) (*signing.SigningCredentials, error) {
	loader := newLoader(g, cfg, log)

	creds, err := loader.Load()
	if err != nil {
		return nil, toCLIError(err)
	}

	if !g.Keyring && !cfg.KeyringEnabled() {
		return creds, nil
	}

	store, err := openStore(cfg.SecretsBackend)
	if err != nil {
		return nil, &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}
	log.Debug("filling missing passwords from secrets store", zap.String("store", secrets.Describe(store)))

	filled, err := signing.WithSecrets(creds, store, secrets.ErrNotFound)
	if err != nil {
		return nil, &output.CLIError{
			Message:  fmt.Sprintf("Failed to read secrets store: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}
	return filled, nil
}

// toCLIError maps signing errors onto exit codes and hints
func toCLIError(err error) error {
	var (
		parseErr   *signing.ParseError
		ioErr      *signing.IOError
		missingErr *signing.MissingCredentialError
	)

	switch {
	case errors.As(err, &parseErr):
		return output.NewCLIError(output.ExitDataError, err.Error()).
			WithHint("Use one key=value pair per line; lines starting with # are comments").
			Wrap(err)
	case errors.As(err, &ioErr):
		return output.NewCLIError(output.ExitIOError, err.Error()).
			WithHint("Check that the file is readable by the current user").
			Wrap(err)
	case errors.As(err, &missingErr):
		return output.NewCLIError(output.ExitMissingCredential, err.Error()).
			WithHint(missingHint(missingErr.Field)).
			Wrap(err)
	case errors.Is(err, signing.ErrUnknownVariant):
		return output.NewCLIError(output.ExitUsage, err.Error()).
			WithHint("Known variants: " + strings.Join(signing.NewBinder(nil).Variants(), ", ")).
			Wrap(err)
	default:
		return err
	}
}

func missingHint(field string) string {
	for _, f := range signing.SecretFields {
		if f == field {
			return fmt.Sprintf("Add %s=... to the properties file, or run: signcfg secrets set <alias> %s and pass --keyring", field, field)
		}
	}
	return fmt.Sprintf("Add %s=... to the properties file", field)
}

// statusOf describes a field for listings
func statusOf(creds *signing.SigningCredentials, field string) string {
	if creds.Has(field) {
		return "set"
	}
	return "missing"
}

// joinOrNone renders a field list for human output
func joinOrNone(fields []string) string {
	if len(fields) == 0 {
		return "-"
	}
	return strings.Join(fields, ",")
}
