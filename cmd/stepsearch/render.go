package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	search "github.com/swdunlop/search-go"
	"github.com/swdunlop/search-go/kmp"
	"github.com/swdunlop/search-go/session"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	matchColor    = color.New(color.FgGreen, color.Bold)
	mismatchColor = color.New(color.FgRed, color.Bold)
	defaultColor  = color.New(color.FgHiBlack)
	labelColor    = color.New(color.FgCyan)
)

// setColor applies the color option: "on", "off" or "auto", which colours only when stdout is a terminal.
func setColor(mode string) error {
	switch strings.ToLower(mode) {
	case ``, `auto`:
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	case `on`, `always`, `true`:
		color.NoColor = false
	case `off`, `never`, `false`:
		color.NoColor = true
	default:
		return fmt.Errorf(`unsupported color mode %q`, mode)
	}
	return nil
}

// cellWidth fits annotations up to two digits with a space between cells.
const cellWidth = 3

// render draws the text and the pattern aligned at the pattern offset, colouring the cells a display should
// highlight, followed by the annotation rows of the engine if it has any.
func render(w io.Writer, snap session.Snapshot) error {
	var buf strings.Builder
	if snap.Last != nil {
		fmt.Fprintf(&buf, "%s %v\n", labelColor.Sprintf(`#%-4d`, snap.Steps), snap.Last.Info)
	}

	start, end := snap.Highlight()
	hl := highlightColor(snap)
	buf.WriteString(labelColor.Sprint(`text     `))
	for i := 0; i < len(snap.Text); i++ {
		c := defaultColor
		if i >= start && i < end {
			c = hl
		}
		buf.WriteString(c.Sprint(cell(snap.Text[i])))
	}
	buf.WriteByte('\n')
	if snap.Annotations != nil && snap.Annotations.Text != nil {
		writeAnnotations(&buf, `shift    `, 0, snap.Annotations.Text)
	}

	offset := snap.Offset
	if offset < 0 {
		offset = 0
	}
	buf.WriteString(labelColor.Sprint(`pattern  `))
	buf.WriteString(strings.Repeat(` `, offset*cellWidth))
	for j := 0; j < len(snap.Pattern); j++ {
		c := defaultColor
		switch {
		case snap.State == search.MatchFound:
			c = matchColor
		case snap.State == search.InProgress && snap.Last != nil && snap.Last.Info.PatternIndex == j:
			c = hl
		}
		buf.WriteString(c.Sprint(cell(snap.Pattern[j])))
	}
	buf.WriteByte('\n')
	if snap.Annotations != nil && snap.Annotations.Pattern != nil {
		writeAnnotations(&buf, tableName(snap)+` `, offset, snap.Annotations.Pattern)
	}

	fmt.Fprintf(&buf, "%s offset %d\n", stateColor(snap.State).Sprint(snap.State), snap.Offset)
	_, err := io.WriteString(w, buf.String())
	return err
}

// highlightColor picks the colour of the highlighted text: green for a match, red for a mismatch or a failed search.
func highlightColor(snap session.Snapshot) *color.Color {
	switch snap.State {
	case search.MatchFound:
		return matchColor
	case search.NoMatch:
		return mismatchColor
	}
	if snap.Last != nil && snap.Last.Info.Match {
		return matchColor
	}
	return mismatchColor
}

func stateColor(state search.State) *color.Color {
	switch state {
	case search.MatchFound:
		return matchColor
	case search.NoMatch:
		return mismatchColor
	}
	return labelColor
}

func tableName(snap session.Snapshot) string {
	if snap.Failure != nil {
		return `failure `
	}
	return `suffix  `
}

func cell(c byte) string {
	if c < ' ' || c > '~' {
		return fmt.Sprintf(`%-*s`, cellWidth, `.`)
	}
	return fmt.Sprintf(`%-*c`, cellWidth, c)
}

func writeAnnotations(buf *strings.Builder, label string, offset int, seq []int) {
	buf.WriteString(labelColor.Sprint(label))
	buf.WriteString(strings.Repeat(` `, offset*cellWidth))
	for _, n := range seq {
		buf.WriteString(defaultColor.Sprintf(`%-*d`, cellWidth, n))
	}
	buf.WriteByte('\n')
}

// renderTables lists the preprocessing tables of the engine.
func renderTables(w io.Writer, snap session.Snapshot) error {
	var buf strings.Builder
	if snap.Failure != nil {
		fmt.Fprintf(&buf, "%s %v\n", labelColor.Sprint(`failure     `), snap.Failure)
	}
	if snap.BadCharacter != nil {
		buf.WriteString(labelColor.Sprint(`bad char    `))
		for i, shift := range snap.BadCharacter {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, `%q:%d`, shift.Char, shift.Shift)
		}
		buf.WriteString("\n")
	}
	if snap.GoodSuffix != nil {
		fmt.Fprintf(&buf, "%s %v\n", labelColor.Sprint(`good suffix `), snap.GoodSuffix)
	}
	if buf.Len() == 0 {
		buf.WriteString("no tables, the pattern is empty\n")
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

// renderSummary reports how the search ended, including the longest partial match when there was no match.
func renderSummary(w io.Writer, snap session.Snapshot) error {
	var err error
	switch snap.State {
	case search.MatchFound:
		_, err = fmt.Fprintf(w, "%s at %d after %d steps\n", matchColor.Sprint(`match`), snap.Offset, snap.Steps)
	case search.NoMatch:
		size, pos := kmp.Overlap(snap.Pattern, snap.Text)
		_, err = fmt.Fprintf(w, "%s after %d steps, longest prefix of the pattern is %d bytes at %d\n",
			mismatchColor.Sprint(`no match`), snap.Steps, size, pos)
	default:
		_, err = fmt.Fprintf(w, "%s after %d steps\n", labelColor.Sprint(`in progress`), snap.Steps)
	}
	return err
}

// A trace is the structured form of a completed run.
type trace struct {
	Snapshot session.Snapshot `json:"snapshot" yaml:"snapshot"`
	Events   []session.Event  `json:"events" yaml:"events"`
}

func writeTrace(w io.Writer, format string, tr trace) error {
	switch strings.ToLower(format) {
	case `yaml`, `yml`:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tr); err != nil {
			return err
		}
		return enc.Close()
	case `json`:
		enc := json.NewEncoder(w)
		enc.SetIndent(``, `  `)
		return enc.Encode(tr)
	}
	return fmt.Errorf(`unsupported format %q`, format)
}
