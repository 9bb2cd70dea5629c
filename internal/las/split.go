package las

import (
	"strings"
)

// RawSection is one "~" block exactly as it appeared in the source.
type RawSection struct {
	Title string   // title line without the leading "~", trimmed
	Line  int      // 1-based line number of the title line
	Body  []string // lines after the title, without line terminators
	Raw   string   // verbatim source text from the title line up to the next section
}

// BodyLine returns the 1-based source line number of Body[i].
func (r RawSection) BodyLine(i int) int { return r.Line + 1 + i }

// SplitResult is the output of Split.
type SplitResult struct {
	Sections []RawSection
	Err      error // *Error of KindSplit, nil when the structure was usable
}

// VersionSection returns the last section whose title starts with "V", the
// one a later duplicate leaves in the file. Version detection needs no
// grammar, so it works before one is chosen.
func (r SplitResult) VersionSection() (RawSection, bool) {
	for i := len(r.Sections) - 1; i >= 0; i-- {
		if s := r.Sections[i]; s.Title != "" && (s.Title[0] == 'V' || s.Title[0] == 'v') {
			return s, true
		}
	}
	return RawSection{}, false
}

// Split cuts text into raw sections at lines whose first non-blank
// character is "~". Text before the first title line is discarded.
//
// A file without any title line yields a split error. A title line with no
// name also yields a split error, but splitting continues and every
// well-formed section is still returned.
func Split(text string) SplitResult {
	var (
		res      SplitResult
		cur      *RawSection
		curStart int
		problems []*Error
	)

	closeSection := func(end int) {
		if cur == nil {
			return
		}
		cur.Raw = text[curStart:end]
		if cur.Title == "" {
			problems = append(problems, newError(KindSplit, "", cur.Line, ErrEmptyTitle, "section dropped"))
		} else {
			res.Sections = append(res.Sections, *cur)
		}
		cur = nil
	}

	lineNo := 0
	for pos := 0; pos < len(text); {
		end := strings.IndexByte(text[pos:], '\n')
		next := len(text)
		if end >= 0 {
			next = pos + end + 1
			end = pos + end
		} else {
			end = len(text)
		}
		lineNo++
		line := strings.TrimSuffix(text[pos:end], "\r")

		if trimmed := strings.TrimLeft(line, " \t"); strings.HasPrefix(trimmed, "~") {
			closeSection(pos)
			cur = &RawSection{
				Title: strings.TrimSpace(trimmed[1:]),
				Line:  lineNo,
			}
			curStart = pos
		} else if cur != nil {
			cur.Body = append(cur.Body, line)
		}
		pos = next
	}
	closeSection(len(text))

	switch {
	case len(res.Sections) == 0 && len(problems) == 0:
		res.Err = newError(KindSplit, "", 0, ErrNoSections, "cannot locate any section title line")
	case len(problems) == 1:
		res.Err = problems[0]
	case len(problems) > 1:
		res.Err = newError(KindSplit, "", problems[0].Line, ErrEmptyTitle,
			"%d section title lines have no name", len(problems))
	}
	return res
}
