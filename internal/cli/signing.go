package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/semmy-space/signcfg/internal/config"
	"github.com/semmy-space/signcfg/internal/output"
	"github.com/semmy-space/signcfg/internal/signing"
)

// ShowCmd prints the loaded credentials
type ShowCmd struct {
	Reveal bool `help:"Print passwords in clear text"`
}

// credentialItem is one row of show output
type credentialItem struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// Run executes the show command
func (cmd *ShowCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals, log *zap.Logger) error {
	creds, err := loadCredentials(globals, cfg, log)
	if err != nil {
		return err
	}

	items := make([]credentialItem, 0, len(signing.Fields))
	for _, field := range signing.Fields {
		value, _ := creds.Lookup(field)
		if !cmd.Reveal && isSecretField(field) {
			value = signing.Secret(value).String()
		}
		items = append(items, credentialItem{
			Field:  field,
			Value:  value,
			Status: statusOf(creds, field),
		})
	}

	cols := []output.Column{
		{Name: "Field", Key: "Field"},
		{Name: "Value", Key: "Value", Width: 60},
		{Name: "Status", Key: "Status"},
	}
	if err := fp.Formatter.PrintList(items, cols); err != nil {
		return err
	}

	if !creds.Found() {
		fp.Formatter.PrintHint(fmt.Sprintf("%s does not exist; release builds cannot be signed", creds.Source()))
	}
	return nil
}

func isSecretField(field string) bool {
	for _, f := range signing.SecretFields {
		if f == field {
			return true
		}
	}
	return false
}

// CheckCmd resolves the signing config of a variant
type CheckCmd struct {
	Variant         string `arg:"" optional:"" default:"release" help:"Build variant to check"`
	RequireKeystore bool   `help:"Also fail when the resolved keystore file does not exist" name:"require-keystore"`
}

// checkResult is what check prints on success
type checkResult struct {
	Variant   string `json:"variant"`
	Signed    bool   `json:"signed"`
	KeyAlias  string `json:"keyAlias,omitempty"`
	StoreFile string `json:"storeFile,omitempty"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals, log *zap.Logger) error {
	creds, err := loadCredentials(globals, cfg, log)
	if err != nil {
		return err
	}

	signingCfg, err := signing.NewBinder(creds).Resolve(cmd.Variant)
	if err != nil {
		return toCLIError(err)
	}

	result := checkResult{Variant: cmd.Variant}
	if signingCfg != nil {
		result.Signed = true
		result.KeyAlias = signingCfg.KeyAlias
		result.StoreFile = signingCfg.StoreFile

		if cmd.RequireKeystore {
			loader := newLoader(globals, cfg, log)
			if _, err := loader.Fs().Stat(signingCfg.StoreFile); err != nil {
				return &output.CLIError{
					Message:  fmt.Sprintf("keystore %s: %v", signingCfg.StoreFile, err),
					Hint:     "storeFile is resolved against " + loader.StoreBase(),
					ExitCode: output.ExitNotFound,
					Err:      err,
				}
			}
		}
	}
	log.Debug("variant resolved", zap.String("variant", cmd.Variant), zap.Bool("signed", result.Signed))

	return fp.Formatter.Print(result)
}

// VariantsCmd lists the variant bindings
type VariantsCmd struct{}

type variantItem struct {
	Variant string `json:"variant"`
	Signing string `json:"signing"`
	Ready   bool   `json:"ready"`
	Missing string `json:"missing"`
}

// Run executes the variants command
func (cmd *VariantsCmd) Run(cfg *config.Config, fp *FormatterProvider, globals *Globals, log *zap.Logger) error {
	creds, err := loadCredentials(globals, cfg, log)
	if err != nil {
		return err
	}

	binder := signing.NewBinder(creds)
	var items []variantItem
	for _, name := range binder.Variants() {
		bound, err := binder.Bound(name)
		if err != nil {
			return toCLIError(err)
		}

		item := variantItem{Variant: name, Signing: "toolchain debug key", Ready: true, Missing: "-"}
		if bound {
			item.Signing = creds.Source()
			item.Missing = joinOrNone(creds.Missing())
			_, err := binder.Resolve(name)
			item.Ready = err == nil
		}
		items = append(items, item)
	}

	cols := []output.Column{
		{Name: "Variant", Key: "Variant"},
		{Name: "Signing", Key: "Signing", Width: 50},
		{Name: "Ready", Key: "Ready"},
		{Name: "Missing", Key: "Missing"},
	}
	return fp.Formatter.PrintList(items, cols)
}
