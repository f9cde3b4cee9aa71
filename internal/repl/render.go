// ABOUTME: Output rendering for the REPL: lipgloss styles, glamour help, aligned history
// ABOUTME: Styling is bypassed entirely when color is off so piped output stays plain

package repl

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

type style struct {
	lipgloss.Style
	enabled bool
}

func (s style) paint(text string) string {
	if !s.enabled {
		return text
	}
	return s.Render(text)
}

type styles struct {
	result  style
	err     style
	heading style
}

func newStyles(w io.Writer, color bool) styles {
	re := lipgloss.NewRenderer(w)
	// Known dark background keeps lipgloss from sending OSC 10/11 queries.
	re.SetHasDarkBackground(true)
	return styles{
		result:  style{re.NewStyle().Foreground(lipgloss.Color("2")).Bold(true), color},
		err:     style{re.NewStyle().Foreground(lipgloss.Color("1")), color},
		heading: style{re.NewStyle().Foreground(lipgloss.Color("6")).Bold(true), color},
	}
}

// markdownRenderer renders help markdown with glamour, caching the output
// since help text does not change during a session.
type markdownRenderer struct {
	width int
	cache map[string]string
}

func newMarkdownRenderer(width int) *markdownRenderer {
	return &markdownRenderer{width: width, cache: make(map[string]string)}
}

func (m *markdownRenderer) Render(md string) string {
	if md == "" {
		return ""
	}
	if cached, ok := m.cache[md]; ok {
		return cached
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	rendered = strings.TrimRight(rendered, "\n ")
	m.cache[md] = rendered
	return rendered
}

// formatHistory numbers lines and aligns the "=" column. Widths are measured
// per grapheme cluster so wide operation names still line up.
func formatHistory(lines []string) string {
	type row struct{ left, right string }
	rows := make([]row, len(lines))
	maxLeft := 0
	for i, line := range lines {
		left, right := line, ""
		if idx := strings.LastIndex(line, " = "); idx >= 0 {
			left, right = line[:idx], line[idx+len(" = "):]
		}
		rows[i] = row{left, right}
		maxLeft = max(maxLeft, displayWidth(left))
	}

	num := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d. %s", num, i+1, r.left)
		if r.right != "" {
			b.WriteString(strings.Repeat(" ", maxLeft-displayWidth(r.left)))
			b.WriteString(" = ")
			b.WriteString(r.right)
		}
	}
	return b.String()
}

// displayWidth returns the terminal cell width of s.
func displayWidth(s string) int {
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		r, _ := utf8.DecodeRuneInString(cluster)
		w += runewidth.RuneWidth(r)
	}
	return w
}
