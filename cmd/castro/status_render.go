package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"castro/internal/deps"
	"castro/internal/preflight"
)

// statusKind classifies one doctor line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusOptional
	statusFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

const doctorLabelWidth = 16

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "ok"
	case statusOptional:
		return "optional"
	case statusFail:
		return "FAIL"
	default:
		return "info"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusOptional:
		return ansiYellow
	case statusFail:
		return ansiRed
	default:
		return ""
	}
}

// renderStatusLine formats "  Label:  [kind] message". Info lines stay
// uncoloured so only actionable results stand out.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + kind.label() + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", doctorLabelWidth, label+":", status)
	if colorize {
		if color := kind.color(); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func checkKind(check preflight.Result) statusKind {
	if check.Passed {
		return statusOK
	}
	return statusFail
}

func dependencyKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusOptional
	default:
		return statusFail
	}
}

func renderSectionHeader(title string, colorize bool) string {
	title = strings.TrimSpace(title)
	if colorize {
		return ansiCyan + title + ansiReset
	}
	return title
}

// shouldColorize is true for terminals unless NO_COLOR is set.
func shouldColorize(writer io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
