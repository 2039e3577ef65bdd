package render

import (
	"fmt"
	"io"
	"strings"
)

// ShortIDLen is how many leading characters of an id the text view prints.
const ShortIDLen = 8

// ShortID abbreviates id for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// TextView writes fragments as plain text, one block per fragment. It is the
// host used by one-shot CLI commands.
type TextView struct {
	w io.Writer
}

// NewTextView creates a TextView writing to w.
func NewTextView(w io.Writer) *TextView {
	return &TextView{w: w}
}

func (v *TextView) ShowLists(p ListPanel) {
	fmt.Fprintln(v.w, "Lists:")
	if p.Placeholder != "" {
		fmt.Fprintf(v.w, "  %s\n", p.Placeholder)
		return
	}
	for _, l := range p.Lists {
		marker := " "
		if l.Active {
			marker = "*"
		}
		fmt.Fprintf(v.w, "  %s %s  (%s)\n", marker, l.Name, ShortID(l.ID))
	}
}

func (v *TextView) ShowHeader(h Header) {
	fmt.Fprintf(v.w, "\n%s\n", h.Title)
}

func (v *TextView) ShowFilters(f FilterBar) {
	labels := make([]string, len(f.Options))
	for i, o := range f.Options {
		if o.Active {
			labels[i] = "[" + o.Label + "]"
		} else {
			labels[i] = o.Label
		}
	}
	fmt.Fprintf(v.w, "Filter: %s\n", strings.Join(labels, " "))
}

func (v *TextView) ShowItems(p ItemPanel) {
	if p.Placeholder != "" {
		fmt.Fprintf(v.w, "  %s\n", p.Placeholder)
	}
	for _, r := range p.Rows {
		box := "[ ]"
		if r.Done {
			box = "[x]"
		}
		fmt.Fprintf(v.w, "  %s %s  (%s)\n", box, r.Text, ShortID(r.ID))
	}
	fmt.Fprintln(v.w, p.RemainingLabel)
}
