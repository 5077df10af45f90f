package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ikit/internal/services"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var titleCaser = cases.Title(language.Und)

func renderStatusLine(label string, ok bool, message string, colorize bool) string {
	status, color := "OK", ansiGreen
	if !ok {
		status, color = "FAIL", ansiRed
	}
	statusText := fmt.Sprintf("[%s]", status)
	if message != "" {
		statusText += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

// outcomeLabel renders a history outcome such as "succeeded" for display.
func outcomeLabel(outcome string, colorize bool) string {
	label := titleCaser.String(strings.TrimSpace(outcome))
	if !colorize {
		return label
	}
	if color := outcomeColor(outcome); color != "" {
		return color + label + ansiReset
	}
	return label
}

func outcomeColor(outcome string) string {
	switch outcome {
	case services.OutcomeSucceeded:
		return ansiGreen
	case services.OutcomeRejected:
		return ansiYellow
	case services.OutcomeFailed:
		return ansiRed
	default:
		return ""
	}
}

func summaryLine(counts map[string]int) string {
	return fmt.Sprintf("%d succeeded, %d rejected, %d failed",
		counts[services.OutcomeSucceeded],
		counts[services.OutcomeRejected],
		counts[services.OutcomeFailed],
	)
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
