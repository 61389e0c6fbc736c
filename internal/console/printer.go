package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/carreg/internal/vehicle"
)

// EmptyMessage is printed when listing an empty registry.
const EmptyMessage = "Database is currently empty."

// Printer writes styled console output. Styles degrade to plain text when
// out is not a terminal.
type Printer struct {
	out     io.Writer
	title   lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	errText lipgloss.Style
	label   lipgloss.Style
}

// NewPrinter returns a Printer bound to out.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	// Resolve the background color before the first prompt so the terminal's
	// OSC 11 reply cannot land in the middle of user input.
	_ = r.HasDarkBackground()
	return &Printer{
		out:     out,
		title:   r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#73F59F"}),
		warn:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FECA57"}),
		errText: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FF8787"}),
		label:   r.NewStyle().Faint(true),
	}
}

func (p *Printer) Println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Title(s string) {
	p.Println(p.title.Render(s))
}

func (p *Printer) Success(s string) {
	p.Println(p.success.Render(s))
}

func (p *Printer) Warn(s string) {
	p.Println(p.warn.Render(s))
}

func (p *Printer) Error(s string) {
	p.Println(p.errText.Render(s))
}

func (p *Printer) fields(reg string, v vehicle.Vehicle) {
	p.Printf("%s %s\n", p.label.Render("Registration:"), reg)
	p.Printf("%s %s\n", p.label.Render("Make:"), v.Make)
	p.Printf("%s %s\n", p.label.Render("Model:"), v.Model)
	p.Printf("%s %s\n", p.label.Render("Year:"), v.Year)
}

// Details prints one record in a framed block.
func (p *Printer) Details(reg string, v vehicle.Vehicle) {
	p.Println("")
	p.Title("--- Car Details ---")
	p.fields(reg, v)
	p.Println(strings.Repeat("-", 18))
	p.Println("")
}

// List prints every entry, or EmptyMessage when there are none.
func (p *Printer) List(entries []vehicle.Entry) {
	if len(entries) == 0 {
		p.Println("")
		p.Println(EmptyMessage)
		p.Println("")
		return
	}
	p.Println("")
	p.Title("--- All Cars in Database ---")
	for _, e := range entries {
		p.fields(e.Registration, e.Vehicle)
		p.Println(strings.Repeat("-", 30))
	}
	p.Println("")
}
