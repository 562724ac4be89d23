package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes (constants)
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
)

var colorsEnabled = true

func init() {
	// Disable colors if NO_COLOR env var is set
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
	}
}

// Color helper functions
func colorize(color, text string) string {
	if !colorsEnabled {
		return text
	}
	return color + text + ansiReset
}

func colorRed(text string) string    { return colorize(ansiRed, text) }
func colorGreen(text string) string  { return colorize(ansiGreen, text) }
func colorYellow(text string) string { return colorize(ansiYellow, text) }
func colorCyan(text string) string   { return colorize(ansiCyan, text) }
func colorBold(text string) string   { return colorize(ansiBold, text) }
func colorDim(text string) string    { return colorize(ansiDim, text) }

// Output helpers
func printSuccess(w io.Writer, message string) {
	fmt.Fprintln(w, colorGreen("✓")+" "+message)
}

func printError(w io.Writer, message string) {
	fmt.Fprintln(w, colorRed("✗")+" "+message)
}

func printWarning(w io.Writer, message string) {
	fmt.Fprintln(w, colorYellow("⚠")+" "+message)
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Pad before coloring so escape codes do not skew alignment
	for i, h := range headers {
		fmt.Fprint(w, colorBold(fmt.Sprintf("%-*s", widths[i], h))+"  ")
	}
	fmt.Fprintln(w)

	for _, width := range widths {
		fmt.Fprint(w, colorDim(strings.Repeat("─", width))+"  ")
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(w, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}
