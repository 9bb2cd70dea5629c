package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/lasfile/internal/core"
	"github.com/JonMunkholm/lasfile/internal/las"
)

// fileDocument is the structured form of a parsed file printed by show.
type fileDocument struct {
	Path      string             `json:"path" yaml:"path" toml:"path"`
	Version   string             `json:"version" yaml:"version" toml:"version"`
	Wrap      bool               `json:"wrap" yaml:"wrap" toml:"wrap"`
	Delimiter string             `json:"delimiter" yaml:"delimiter" toml:"delimiter"`
	API       string             `json:"api,omitempty" yaml:"api,omitempty" toml:"api,omitempty"`
	Sections  []core.SectionView `json:"sections" yaml:"sections" toml:"sections"`
	Curves    []curveStats       `json:"curves,omitempty" yaml:"curves,omitempty" toml:"curves,omitempty"`
	Errors    []core.StageError  `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

// curveStats summarises one data column. NULL and non-numeric cells count
// as missing.
type curveStats struct {
	Curve   string   `json:"curve" yaml:"curve" toml:"curve"`
	Valid   int      `json:"valid" yaml:"valid" toml:"valid"`
	Missing int      `json:"missing" yaml:"missing" toml:"missing"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
}

func newCurveStats(fr las.Frame) []curveStats {
	out := make([]curveStats, 0, len(fr.Columns))
	for _, name := range fr.Columns {
		values, _ := fr.Column(name)
		st := curveStats{Curve: name}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range values {
			if math.IsNaN(v) {
				st.Missing++
				continue
			}
			st.Valid++
			lo, hi = min(lo, v), max(hi, v)
		}
		if st.Valid > 0 {
			st.Min, st.Max = &lo, &hi
		}
		out = append(out, st)
	}
	return out
}

func newFileDocument(path string, f *las.File) fileDocument {
	info := f.VersionInfo()
	doc := fileDocument{
		Path:      path,
		Version:   info.Version,
		Wrap:      info.Wrap,
		Delimiter: info.Delimiter.String(),
		Errors:    core.StageErrors(f),
	}
	if api, ok := f.API(); ok {
		doc.API = api.Formatted()
	}
	for _, s := range f.Sections() {
		doc.Sections = append(doc.Sections, core.NewSectionView(s))
	}
	return doc
}

func (a *app) newShowCmd() *cobra.Command {
	var (
		format   string
		sections []string
		raw      bool
		stats    bool
	)
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the sections of a LAS file",
		Long: `Show parses a file and prints its sections with their records,
data rows or free text. Problems found while parsing are listed last.
--stats adds the valid and missing count and the range of every curve,
treating the Well NULL value as missing.

Examples:
  lasctl show well.las
  lasctl show well.las --stats -o json
  lasctl show well.las --section well --section curves
  lasctl show well.las -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format, formatText, formatJSON, formatYAML, formatTOML); err != nil {
				return err
			}
			f, err := a.openFile(args[0])
			if err != nil {
				return err
			}
			doc := newFileDocument(args[0], f)

			if len(sections) > 0 {
				doc.Sections = doc.Sections[:0]
				for _, name := range sections {
					s, ok := f.Section(name)
					if !ok {
						return fmt.Errorf("%w: %q", core.ErrSectionNotFound, name)
					}
					doc.Sections = append(doc.Sections, core.NewSectionView(s))
				}
			}
			if stats {
				doc.Curves = newCurveStats(f.Frame())
			}
			if !raw {
				for i := range doc.Sections {
					doc.Sections[i].Raw = ""
				}
			}

			if format == formatText {
				renderDocument(out(cmd), doc)
				return nil
			}
			return encode(out(cmd), format, doc)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, json, yaml, toml")
	cmd.Flags().StringSliceVarP(&sections, "section", "s", nil, "only print these sections (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "include the raw section text in structured output")
	cmd.Flags().BoolVar(&stats, "stats", false, "summarise the values of every curve")
	return cmd
}
