package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/semmy-space/signcfg/internal/config"
	"github.com/semmy-space/signcfg/internal/output"
	"github.com/semmy-space/signcfg/internal/secrets"
	"github.com/semmy-space/signcfg/internal/signing"
)

// stdin is swapped out in tests
var stdin io.Reader = os.Stdin

func openConfiguredStore(cfg *config.Config) (secrets.Store, error) {
	store, err := openStore(cfg.SecretsBackend)
	if err != nil {
		return nil, &output.CLIError{
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}
	return store, nil
}

// SecretsSetCmd implements secrets set
type SecretsSetCmd struct {
	Alias string `arg:"" help:"Key alias the password belongs to"`
	Field string `arg:"" help:"Which password to store" enum:"keyPassword,storePassword"`
	Value string `hidden:"" help:"Password value; visible in the process list, prefer SIGNCFG_SECRET_VALUE or the prompt" env:"SIGNCFG_SECRET_VALUE"`
}

// Run executes the set command
func (cmd *SecretsSetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	value := cmd.Value
	if value == "" {
		var err error
		value, err = readSecret(fmt.Sprintf("%s for %s: ", cmd.Field, cmd.Alias))
		if err != nil {
			return &output.CLIError{
				Message:  fmt.Sprintf("Failed to read password: %v", err),
				ExitCode: output.ExitGeneral,
				Err:      err,
			}
		}
	}
	if value == "" {
		return &output.CLIError{
			Message:  "Password must not be empty",
			ExitCode: output.ExitUsage,
		}
	}

	store, err := openConfiguredStore(cfg)
	if err != nil {
		return err
	}

	if err := store.Set(signing.SecretKey(cmd.Alias, cmd.Field), value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to store secret: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fmt.Fprintf(os.Stderr, "Stored %s for %s in %s\n", cmd.Field, cmd.Alias, secrets.Describe(store))
	return nil
}

// readSecret prompts without echo on a terminal and reads one line otherwise
func readSecret(prompt string) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SecretsDeleteCmd implements secrets delete
type SecretsDeleteCmd struct {
	Alias string `arg:"" help:"Key alias the password belongs to"`
	Field string `arg:"" help:"Which password to remove" enum:"keyPassword,storePassword"`
}

// Run executes the delete command
func (cmd *SecretsDeleteCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	store, err := openConfiguredStore(cfg)
	if err != nil {
		return err
	}

	key := signing.SecretKey(cmd.Alias, cmd.Field)
	if err := store.Delete(key); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return &output.CLIError{
				Message:  fmt.Sprintf("No stored %s for %s", cmd.Field, cmd.Alias),
				ExitCode: output.ExitNotFound,
				Err:      err,
			}
		}
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to delete secret: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fmt.Fprintf(os.Stderr, "Removed %s for %s\n", cmd.Field, cmd.Alias)
	return nil
}

// SecretsListCmd implements secrets list
type SecretsListCmd struct{}

type secretItem struct {
	Alias string `json:"alias"`
	Field string `json:"field"`
}

// Run executes the list command
func (cmd *SecretsListCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	store, err := openConfiguredStore(cfg)
	if err != nil {
		return err
	}

	keys, err := store.List()
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to list stored secrets: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	var items []secretItem
	for _, key := range keys {
		i := strings.LastIndex(key, "/")
		if i <= 0 || !isSecretField(key[i+1:]) {
			continue
		}
		items = append(items, secretItem{Alias: key[:i], Field: key[i+1:]})
	}

	if len(items) == 0 {
		fp.Formatter.PrintHint("No stored passwords. Run 'signcfg secrets set <alias> keyPassword' to add one")
		return nil
	}

	cols := []output.Column{
		{Name: "Alias", Key: "Alias"},
		{Name: "Field", Key: "Field"},
	}
	return fp.Formatter.PrintList(items, cols)
}
