package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/semmy-space/signcfg/internal/config"
	"github.com/semmy-space/signcfg/internal/output"
)

func unknownKeyError(key string, code int) error {
	return &output.CLIError{
		Message:  fmt.Sprintf("Unknown config key: %s", key),
		Hint:     fmt.Sprintf("Valid keys: %v", config.Keys()),
		ExitCode: code,
	}
}

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., properties_file, store_base)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return unknownKeyError(cmd.Key, output.ExitNotFound)
	}

	return fp.Formatter.Print(value)
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKeyError(cmd.Key, output.ExitUsage)
	}

	if err := config.Validate(cmd.Key, cmd.Value); err != nil {
		return output.NewCLIError(output.ExitUsage, err.Error()).
			WithHint(fmt.Sprintf("signcfg config set %s <%s>", cmd.Key, strings.Join(config.ValidValues(cmd.Key), "|"))).
			Wrap(err)
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to set config: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fmt.Fprintf(os.Stderr, "Set %s = %s\n", cmd.Key, cmd.Value)
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKeyError(cmd.Key, output.ExitUsage)
	}

	if err := cfg.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to unset config: %v", err),
			ExitCode: output.ExitGeneral,
			Err:      err,
		}
	}

	fmt.Fprintf(os.Stderr, "Unset %s\n", cmd.Key)
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

type configItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	keys := config.Keys()
	items := make([]configItem, 0, len(keys))
	for _, key := range keys {
		value, _ := cfg.Get(key)
		items = append(items, configItem{Key: key, Value: value})
	}

	cols := []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
	}
	return fp.Formatter.PrintList(items, cols)
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	path := cfg.Path()

	if err := fp.Formatter.Print(path); err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "(file does not exist yet - will be created on first write)\n")
	} else {
		fmt.Fprintf(os.Stderr, "(file exists)\n")
	}
	return nil
}
