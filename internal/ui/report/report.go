// Package report renders application reports for the terminal.
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/modman/internal/app"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/ui/output"
	"go.trai.ch/modman/internal/ui/style"
)

// Renderer writes reports to an output.
type Renderer struct {
	out *termenv.Output
}

// New creates a Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{out: output.New(w)}
}

func (r *Renderer) paint(s string, color lipgloss.Color) string {
	return output.Paint(r.out, s, color)
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *Renderer) heading(s string) {
	r.printf("%s\n", r.out.String(s).Bold().String())
}

// Status renders the enabled packages of a profile.
func (r *Renderer) Status(rep *app.StatusReport) {
	r.heading("Profile " + rep.Profile)
	if rep.Stale {
		r.printf("%s %s\n", r.paint(style.Warning, style.Attention),
			"the catalog changed since the profile was saved, run update to refresh it")
	}

	if len(rep.Packages) == 0 {
		r.printf("  %s\n", r.paint("no packages enabled", style.Muted))
	}
	r.packages(rep.Packages)

	if len(rep.Options) > 0 {
		r.heading("Options")
		for _, key := range slices.Sorted(maps.Keys(rep.Options)) {
			r.printf("  %s = %s\n", key, formatValue(rep.Options[key]))
		}
	}

	if len(rep.Externals) > 0 {
		r.heading("External features")
		for _, f := range rep.Externals {
			r.printf("  %s\n", f)
		}
	}
}

// Update renders the changes an update made or would make.
func (r *Renderer) Update(rep *app.UpdateReport) {
	title := "Profile " + rep.Profile
	if rep.DryRun {
		title += " (dry run)"
	}
	r.heading(title)

	for _, id := range rep.Enabling {
		r.printf("  %s enable   %s\n", r.paint(style.Plus, style.Compatible), id)
	}
	for _, id := range rep.Disabling {
		r.printf("  %s disable  %s\n", r.paint(style.Minus, style.Incompatible), id)
	}
	for _, id := range slices.Sorted(maps.Keys(rep.Selecting)) {
		r.printf("  %s select   %s %s\n", r.paint(style.Arrow, style.Selected), id, rep.Selecting[id])
	}
	for _, id := range slices.Sorted(maps.Keys(rep.Installing)) {
		r.printf("  %s install  %s %s\n", r.paint(style.Dot, style.Selected), id, rep.Installing[id])
	}
	for _, id := range slices.Sorted(maps.Keys(rep.ImplicitChanges)) {
		c := rep.ImplicitChanges[id]
		r.printf("  %s switched %s %s %s %s\n", r.paint(style.Arrow, style.Muted), id, c.From, style.Arrow, c.To)
	}
	for _, id := range slices.Sorted(maps.Keys(rep.ExplicitChanges)) {
		c := rep.ExplicitChanges[id]
		r.printf("  %s switch   %s %s %s %s (not installed)\n", r.paint(style.Warning, style.Attention), id, c.From, style.Arrow, c.To)
	}
	for _, id := range rep.IncompatiblePackages {
		r.printf("  %s incompatible package %s\n", r.paint(style.Cross, style.Incompatible), id)
	}
	for _, f := range rep.IncompatibleExternals {
		r.printf("  %s incompatible external feature %s\n", r.paint(style.Cross, style.Incompatible), f)
	}

	switch {
	case !rep.HasChanges() && len(rep.IncompatiblePackages) == 0:
		r.printf("  %s\n", r.paint("no changes", style.Muted))
	case rep.Saved:
		r.printf("%s saved profile %s\n", r.paint(style.Check, style.Compatible), rep.Profile)
	}
}

// Check renders every variant of a package and the files of the selected one.
func (r *Renderer) Check(rep *app.CheckReport) {
	state := "disabled"
	switch {
	case rep.Explicit:
		state = "enabled"
	case rep.Enabled:
		state = "enabled as dependency"
	}
	r.heading(fmt.Sprintf("Package %s (%s)", rep.Package, state))
	if len(rep.RequiredBy) > 0 {
		r.printf("  required by %s\n", strings.Join(rep.RequiredBy, ", "))
	}

	width := 0
	for _, v := range rep.Variants {
		width = max(width, len(v.ID))
	}
	for _, v := range rep.Variants {
		marker := r.paint(style.Circle, style.Muted)
		if v.Selected {
			marker = r.paint(style.Dot, style.Selected)
		}
		r.printf("  %s %-*s %s%s\n", marker, width, v.ID, versionLabel(v.Version), r.installedLabel(v.Installed))
		r.issues(v.Issues)
	}

	if len(rep.Files) > 0 {
		r.heading("Files")
		for _, f := range rep.Files {
			r.printf("  %s\n", f)
		}
	}
}

func (r *Renderer) packages(pkgs []app.PackageReport) {
	idWidth, variantWidth := 0, 0
	for _, p := range pkgs {
		idWidth = max(idWidth, len(p.ID))
		variantWidth = max(variantWidth, len(p.Variant))
	}

	for _, p := range pkgs {
		marker := r.paint(style.Check, style.Compatible)
		if len(p.Issues) > 0 {
			marker = r.paint(style.Cross, style.Incompatible)
		}
		line := fmt.Sprintf("%-*s %-*s %s", idWidth, p.ID, variantWidth, p.Variant, versionLabel(p.Version))
		r.printf("  %s %s%s", marker, line, r.installedLabel(p.Installed))
		if !p.Explicit && len(p.RequiredBy) > 0 {
			r.printf(" %s", r.paint("required by "+strings.Join(p.RequiredBy, ", "), style.Muted))
		}
		r.printf("\n")
		r.issues(p.Issues)
	}
}

func (r *Renderer) issues(issues []domain.Issue) {
	for _, issue := range issues {
		r.printf("      %s %s\n", r.paint(style.Cross, style.Incompatible), issue.String())
	}
}

func (r *Renderer) installedLabel(installed bool) string {
	if installed {
		return r.paint("installed", style.Installed)
	}
	return r.paint("not installed", style.Missing)
}

func versionLabel(version string) string {
	if version == "" {
		return ""
	}
	return version + " "
}

func formatValue(v domain.OptionValue) string {
	list, ok := v.([]domain.OptionValue)
	if !ok {
		return fmt.Sprint(v)
	}
	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = fmt.Sprint(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
