package cli

import (
	"os"

	"golang.org/x/term"
)

// Globals holds global flags available to all commands
type Globals struct {
	ProjectRoot string `help:"Android project root holding the properties file" name:"project-root" short:"C" default:"." type:"path" env:"SIGNCFG_PROJECT_ROOT"`
	Properties  string `help:"Properties file, relative to the project root (default key.properties)" env:"SIGNCFG_PROPERTIES" predictor:"properties"`
	StoreBase   string `help:"Directory relative storeFile values resolve against (default project root)" name:"store-base" env:"SIGNCFG_STORE_BASE" predictor:"dirs"`
	Keyring     bool   `help:"Fill passwords missing from the properties file from the secrets store" env:"SIGNCFG_KEYRING"`
	ConfigFile  string `help:"Config file path" name:"config" type:"path" env:"SIGNCFG_CONFIG"`
	Output      string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"SIGNCFG_OUTPUT"`
	Verbose     bool   `help:"Verbose diagnostics on stderr" short:"v" env:"SIGNCFG_VERBOSE"`
}

// ResolvedOutput returns the effective output mode.
// Flag > config default > auto; "auto" is rich on a TTY, plain otherwise.
func (g *Globals) ResolvedOutput(configDefault string) string {
	mode := g.Output
	if mode == "" || mode == "auto" {
		mode = configDefault
	}
	if mode != "" && mode != "auto" {
		return mode
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}
	return "plain"
}
