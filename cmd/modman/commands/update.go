package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/modman/internal/app"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/engine/resolver"
	"go.trai.ch/modman/internal/ui/report"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

type updateFlags struct {
	enable         []string
	disable        []string
	variants       []string
	versions       []string
	options        []string
	packageOptions []string
	externals      []string

	patchVersion    int
	hardwarePatched bool
	force           bool
	dryRun          bool
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	var f updateFlags

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change a profile, resolve it and save the result",
		Example: `  modman update --enable roads --variant roads=dark
  modman update --option driveSide=left --package-option roads:lanes=4
  modman update --external darknite=true --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := f.toOptions(cmd)
			if err != nil {
				return err
			}
			rep, err := c.app.Update(cmd.Context(), c.paths, c.profile, opts)
			if err != nil {
				return err
			}
			return c.print(cmd, rep, func(r *report.Renderer) { r.Update(rep) })
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.enable, "enable", nil, "Enable packages explicitly")
	flags.StringSliceVar(&f.disable, "disable", nil, "Disable explicitly enabled packages")
	flags.StringArrayVar(&f.variants, "variant", nil, "Pin a variant as package=variant, an empty variant removes the pin")
	flags.StringArrayVar(&f.versions, "version", nil, "Pin a version as package=version, an empty version removes the pin")
	flags.StringArrayVar(&f.options, "option", nil, "Set a profile option as key=value, an empty value removes it")
	flags.StringArrayVar(&f.packageOptions, "package-option", nil,
		"Set a package option as package:key=value, an empty value removes it")
	flags.StringArrayVar(&f.externals, "external", nil, "Declare an external feature as feature=true|false")
	flags.IntVar(&f.patchVersion, "patch-version", 0, "Game patch version")
	flags.BoolVar(&f.hardwarePatched, "hardware-patched", false, "Whether the hardware rendering patch is applied")
	flags.BoolVar(&f.force, "force", false, "Resolve even if nothing changed")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Show the changes without saving the profile")

	return cmd
}

func (f *updateFlags) toOptions(cmd *cobra.Command) (app.UpdateOptions, error) {
	opts := app.UpdateOptions{
		Configs: map[string]resolver.ConfigDelta{},
		Force:   f.force,
		DryRun:  f.dryRun,
	}
	delta := func(id string) resolver.ConfigDelta { return opts.Configs[id] }

	for _, id := range f.enable {
		d := delta(id)
		d.Enabled = ptr(true)
		opts.Configs[id] = d
	}
	for _, id := range f.disable {
		d := delta(id)
		d.Enabled = ptr(false)
		opts.Configs[id] = d
	}

	for _, arg := range f.variants {
		id, variant, err := splitPair("variant", arg, "=")
		if err != nil {
			return opts, err
		}
		d := delta(id)
		d.Variant = ptr(variant)
		opts.Configs[id] = d
	}
	for _, arg := range f.versions {
		id, version, err := splitPair("version", arg, "=")
		if err != nil {
			return opts, err
		}
		d := delta(id)
		d.Version = ptr(version)
		opts.Configs[id] = d
	}

	for _, arg := range f.options {
		key, raw, err := splitPair("option", arg, "=")
		if err != nil {
			return opts, err
		}
		value, err := parseValue("option", raw)
		if err != nil {
			return opts, err
		}
		if opts.Options == nil {
			opts.Options = domain.Options{}
		}
		opts.Options[key] = value
	}
	for _, arg := range f.packageOptions {
		id, assignment, err := splitPair("package-option", arg, ":")
		if err != nil {
			return opts, err
		}
		key, raw, err := splitPair("package-option", assignment, "=")
		if err != nil {
			return opts, err
		}
		value, err := parseValue("package-option", raw)
		if err != nil {
			return opts, err
		}
		d := delta(id)
		if d.Options == nil {
			d.Options = domain.Options{}
		}
		d.Options[key] = value
		opts.Configs[id] = d
	}

	for _, arg := range f.externals {
		feature, raw, err := splitPair("external", arg, "=")
		if err != nil {
			return opts, err
		}
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, zerr.With(zerr.With(domain.ErrInvalidArgument, "flag", "external"), "value", arg)
		}
		if opts.Externals == nil {
			opts.Externals = map[string]bool{}
		}
		opts.Externals[feature] = enabled
	}

	flags := cmd.Flags()
	if flags.Changed("patch-version") || flags.Changed("hardware-patched") {
		opts.Settings = &domain.Settings{}
		if flags.Changed("patch-version") {
			opts.Settings.PatchVersion = ptr(f.patchVersion)
		}
		if flags.Changed("hardware-patched") {
			opts.Settings.HardwarePatched = ptr(f.hardwarePatched)
		}
	}

	if len(opts.Configs) == 0 {
		opts.Configs = nil
	}
	return opts, nil
}

// splitPair splits arg at the first sep. The left side must not be empty.
func splitPair(flag, arg, sep string) (string, string, error) {
	left, right, ok := strings.Cut(arg, sep)
	if !ok || left == "" {
		return "", "", zerr.With(zerr.With(domain.ErrInvalidArgument, "flag", flag), "value", arg)
	}
	return left, right, nil
}

// parseValue reads an option value as YAML, so "true", "4" and "[a, b]" keep their types.
// The update later converts each value to the kind its option declares.
// An empty value yields nil.
func parseValue(flag, raw string) (domain.OptionValue, error) {
	if raw == "" {
		return nil, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrInvalidArgument.Error()), "flag", flag), "value", raw)
	}
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(map[string]any); ok {
		return nil, zerr.With(zerr.With(domain.ErrInvalidArgument, "flag", flag), "value", raw)
	}
	return domain.NormalizeValue(v), nil
}

func ptr[T any](v T) *T {
	return &v
}
