package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"
	"go.uber.org/zap"

	"github.com/semmy-space/signcfg/internal/config"
	"github.com/semmy-space/signcfg/internal/logging"
	"github.com/semmy-space/signcfg/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// CLI is the root command structure
type CLI struct {
	Globals

	Show     ShowCmd     `cmd:"" help:"Show the signing credentials loaded from the properties file"`
	Check    CheckCmd    `cmd:"" help:"Resolve the signing config of a build variant"`
	Variants VariantsCmd `cmd:"" help:"List build variants and their signing binding"`
	Secrets  SecretsCmd  `cmd:"" help:"Manage passwords kept outside the properties file"`
	Config   ConfigCmd   `cmd:"" help:"Configuration commands"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// AfterApply runs once flags are parsed. It loads config, builds the logger
// and formatter, and binds them for command Run methods.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	cfg, err := loadConfig(c.ConfigFile)
	if err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			Hint:     "Fix or remove the config file: " + configPathOrDefault(c.ConfigFile),
			ExitCode: output.ExitConfigError,
			Err:      err,
		}
	}

	logger, err := logging.New(c.Verbose)
	if err != nil {
		return err
	}

	formatter := &FormatterProvider{
		Formatter: output.New(c.ResolvedOutput(cfg.DefaultOutput)),
	}

	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)
	ctx.Bind(logger)

	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func configPathOrDefault(path string) string {
	if path == "" {
		return config.ConfigPath()
	}
	return path
}

// SecretsCmd holds secret store subcommands
type SecretsCmd struct {
	Set    SecretsSetCmd    `cmd:"" help:"Store a password for a key alias"`
	Delete SecretsDeleteCmd `cmd:"" help:"Remove a stored password"`
	List   SecretsListCmd   `cmd:"" help:"List stored password keys"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context, log *zap.Logger) error {
	version := ctx.Model.Vars()["version"]
	log.Debug("version requested", zap.String("version", version))
	fmt.Fprintln(ctx.Stdout, "signcfg version "+version)
	return nil
}
