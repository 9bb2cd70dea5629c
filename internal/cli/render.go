package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/lasfile/internal/core"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // green
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleSection = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)  // cyan
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleKey     = lipgloss.NewStyle().Bold(true)
)

func validFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want %s)", format, strings.Join(allowed, ", "))
}

// encode writes v as JSON, YAML or TOML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func statusTag(ok bool) string {
	if ok {
		return styleOK.Render("OK  ")
	}
	return styleFail.Render("FAIL")
}

// renderReport prints one file's check outcome.
func renderReport(w io.Writer, path string, rep core.CheckReport, stages []core.StageError) {
	fmt.Fprintf(w, "%s %s\n", statusTag(rep.OK), path)
	for _, m := range rep.Missing {
		fmt.Fprintf(w, "     %s missing section %s\n", styleFail.Render("-"), m)
	}
	for _, is := range rep.Issues {
		tag := styleWarn.Render("-")
		if is.Critical {
			tag = styleFail.Render("!")
		}
		fmt.Fprintf(w, "     %s %s %s\n", tag, styleDim.Render(is.Code), is.Message)
	}
	// Stage failures are already issues; section parse errors are only
	// issues in a full check.
	if !rep.CriticalOnly {
		return
	}
	for _, e := range stages {
		if e.Slot != "parse" {
			continue
		}
		fmt.Fprintf(w, "     %s %s %s: %s\n", styleWarn.Render("~"), styleDim.Render(e.Code), e.Slot, e.Message)
	}
}

// renderDocument prints a shown file as text.
func renderDocument(w io.Writer, doc fileDocument) {
	fmt.Fprintf(w, "%s %s\n", styleKey.Render("File:"), doc.Path)
	fmt.Fprintf(w, "%s %s  %s %v  %s %s\n",
		styleKey.Render("Version:"), doc.Version,
		styleKey.Render("Wrap:"), doc.Wrap,
		styleKey.Render("Delimiter:"), doc.Delimiter)
	if doc.API != "" {
		fmt.Fprintf(w, "%s %s\n", styleKey.Render("API:"), doc.API)
	}

	for _, s := range doc.Sections {
		fmt.Fprintln(w)
		title := "~" + s.Title
		if s.Association != "" {
			title += " | " + s.Association
		}
		fmt.Fprintf(w, "%s %s\n", styleSection.Render(title), styleDim.Render(fmt.Sprintf("(%s, %s, line %d)", s.Name, s.Kind, s.Line)))

		switch {
		case len(s.Records) > 0:
			width := 0
			for _, r := range s.Records {
				width = max(width, len(r.Mnemonic)+1+len(r.Unit))
			}
			for _, r := range s.Records {
				key := r.Mnemonic + "." + r.Unit
				fmt.Fprintf(w, "  %-*s  %s", width, key, r.Value)
				if r.Description != "" {
					fmt.Fprintf(w, " %s", styleDim.Render(": "+r.Description))
				}
				if r.Error != "" {
					fmt.Fprintf(w, "  %s", styleFail.Render(r.Error))
				}
				fmt.Fprintln(w)
			}
		case len(s.Rows) > 0:
			fmt.Fprintf(w, "  %d row(s)\n", len(s.Rows))
			for _, r := range s.Rows {
				if r.Error != "" {
					fmt.Fprintf(w, "  %s line %d: %s\n", styleFail.Render("!"), r.Line, r.Error)
				}
			}
		case len(s.Text) > 0:
			for _, line := range s.Text {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
		if s.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", styleFail.Render("error:"), s.Error)
		}
	}

	if len(doc.Curves) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleSection.Render("Curve statistics"))
		width := 0
		for _, c := range doc.Curves {
			width = max(width, len(c.Curve))
		}
		for _, c := range doc.Curves {
			fmt.Fprintf(w, "  %-*s  %d valid, %d missing", width, c.Curve, c.Valid, c.Missing)
			if c.Min != nil {
				fmt.Fprintf(w, "  %s", styleDim.Render(fmt.Sprintf("%g .. %g", *c.Min, *c.Max)))
			}
			fmt.Fprintln(w)
		}
	}

	if len(doc.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleFail.Render("Errors"))
		for _, e := range doc.Errors {
			fmt.Fprintf(w, "  %s %s: %s\n", styleDim.Render(e.Code), e.Slot, e.Message)
		}
	}
}
