package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/width"
)

// ── Console display helpers ────────────────────────────────────────

type display struct {
	w io.Writer
}

func (d display) banner(title string) {
	fmt.Fprintln(d.w)
	fmt.Fprintln(d.w, "\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Fprintf(d.w, "\033[36;1m  │\033[0m %s \033[36;1m│\033[0m\n", center(title, 41))
	fmt.Fprintln(d.w, "\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Fprintln(d.w)
}

func (d display) section(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Fprintf(d.w, "  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func (d display) stat(label string, count int) {
	d.value(label, fmt.Sprintf("%d", count))
}

func (d display) value(label, value string) {
	dotsLen := max(42-displayWidth(label)-displayWidth(value), 3)
	fmt.Fprintf(d.w, "  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func (d display) ok(msg string) {
	fmt.Fprintf(d.w, "  \033[32m✓\033[0m %s\n", msg)
}

func (d display) ready(msg string) {
	fmt.Fprintf(d.w, "  \033[32m▶\033[0m %s\n", msg)
}

func (d display) fail(msg string) {
	fmt.Fprintf(d.w, "  \033[31m✗\033[0m %s\n", msg)
}

// displayWidth counts terminal columns; East Asian wide runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func center(s string, cols int) string {
	pad := cols - displayWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

func formatSeconds(d float64) string {
	if math.IsInf(d, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.3fs", d)
}
