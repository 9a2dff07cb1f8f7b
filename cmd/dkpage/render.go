package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"downloadpage/internal/app"
)

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(18)
	headerStyle = lipgloss.NewStyle().Bold(true)
	recentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderPage(w io.Writer, p *app.Page) {
	fmt.Fprintln(w, row("environment", p.Env().String()))
	fmt.Fprintln(w, row("button", fmt.Sprintf("%q (%s)", p.Button().Label(), p.State())))
	res := p.Recents()
	switch {
	case !res.Fetched:
		fmt.Fprintln(w, row("recent", mutedStyle.Render("no session")))
	default:
		fmt.Fprintln(w, row("recent", fmt.Sprintf("%d matched, %d not on this page", len(res.Matched), len(res.Skipped))))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("downloads"))
	for _, r := range p.Table().Rows() {
		text := strings.Join(strings.Fields(r.Text), " ")
		if r.Recent {
			fmt.Fprintf(w, "%s %s\n  %s\n", tagStyle.Render("recent"), recentStyle.Render(text), r.Link)
			continue
		}
		fmt.Fprintf(w, "%s\n  %s\n", text, mutedStyle.Render(r.Link))
	}
}
