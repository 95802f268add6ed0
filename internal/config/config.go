// Package config loads bridge configuration from HCL and exposes it to the
// engine through a deliberately small surface: the renderer only ever sees
// the Special lookup, never the configuration shape itself.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Bridge holds the caller-owned identity and lookup settings for one bridge
// instance.
type Bridge struct {
	SendingApplication   string
	SendingFacility      string
	ReceivingApplication string
	ReceivingFacility    string
	MessageControlPrefix string
	TemplateDir          string

	// specials are extra named template specials defined in configuration.
	specials map[string]string
}

// Special implements the renderer's configuration interface. Endpoint
// identity resolves under the fixed names the templates use; anything else
// resolves through the configured specials block.
func (b *Bridge) Special(name string) (string, bool) {
	switch name {
	case "SendingApplication":
		return b.SendingApplication, true
	case "SendingFacility":
		return b.SendingFacility, true
	case "ReceivingApplication":
		return b.ReceivingApplication, true
	case "ReceivingFacility":
		return b.ReceivingFacility, true
	case "MessageControlPrefix":
		return b.MessageControlPrefix, true
	}
	v, ok := b.specials[name]
	return v, ok
}

// SetSpecial defines or overrides one configured special, mainly for tests
// and embedding services that do not load HCL files.
func (b *Bridge) SetSpecial(name, value string) {
	if b.specials == nil {
		b.specials = map[string]string{}
	}
	b.specials[name] = value
}

// Default returns the configuration used when no file is supplied.
func Default() *Bridge {
	return &Bridge{
		SendingApplication:   "RADBRIDGE",
		SendingFacility:      "RADBRIDGE",
		ReceivingApplication: "RIS",
		ReceivingFacility:    "RIS",
		TemplateDir:          "templates",
	}
}

// fileSchema is the HCL surface of a bridge configuration file.
type fileSchema struct {
	Bridge   *bridgeBlock   `hcl:"bridge,block"`
	Specials *specialsBlock `hcl:"specials,block"`
}

type bridgeBlock struct {
	SendingApplication   string `hcl:"sending_application,optional"`
	SendingFacility      string `hcl:"sending_facility,optional"`
	ReceivingApplication string `hcl:"receiving_application,optional"`
	ReceivingFacility    string `hcl:"receiving_facility,optional"`
	MessageControlPrefix string `hcl:"message_control_prefix,optional"`
	TemplateDir          string `hcl:"template_dir,optional"`
}

// specialsBlock accepts arbitrary attribute names; each must evaluate to a
// constant string.
type specialsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Load parses a bridge configuration file. Unset fields keep their defaults.
func Load(path string) (*Bridge, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}

	cfg := Default()
	if b := schema.Bridge; b != nil {
		setIfPresent(&cfg.SendingApplication, b.SendingApplication)
		setIfPresent(&cfg.SendingFacility, b.SendingFacility)
		setIfPresent(&cfg.ReceivingApplication, b.ReceivingApplication)
		setIfPresent(&cfg.ReceivingFacility, b.ReceivingFacility)
		setIfPresent(&cfg.MessageControlPrefix, b.MessageControlPrefix)
		setIfPresent(&cfg.TemplateDir, b.TemplateDir)
	}

	if schema.Specials != nil {
		attrs, diags := schema.Specials.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("decoding specials in %s: %w", path, diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("evaluating special %q in %s: %w", name, path, diags)
			}
			if val.IsNull() || val.Type() != cty.String {
				return nil, fmt.Errorf("special %q in %s must be a string", name, path)
			}
			cfg.SetSpecial(name, val.AsString())
		}
	}

	return cfg, nil
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
