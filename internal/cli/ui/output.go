package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/JonMunkholm/weaveops/internal/core"
)

var (
	// Color definitions for terminal output
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...any) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintBold prints a bold message
func PrintBold(w io.Writer, format string, args ...any) {
	boldColor.Fprintln(w, fmt.Sprintf(format, args...))
}

// PrintUserError prints err the way the dashboard shows it: the message,
// a suggested action and the support code.
func PrintUserError(w io.Writer, err error) {
	PrintError(w, "%v", err)
	msg := core.MapError(err)
	if msg.Code == "" || msg.Code == "ERR000" {
		return
	}
	if msg.Action != "" {
		fmt.Fprintf(w, "  %s\n", msg.Action)
	}
	fmt.Fprintf(w, "  %s\n", Styles.Muted.Render("Code: "+msg.Code))
}

// ImportSummary renders the outcome of an import as a bordered box. The box
// is green when every row went in, amber when some did and red otherwise.
func ImportSummary(s *core.ImportSummary) string {
	verb := "Imported"
	if s.Operation == core.OpUpdate {
		verb = "Updated"
	}

	title, box, c := verb+" all rows", Styles.SuccessBox, successColor
	switch {
	case len(s.Errors) == 0:
	case s.Imported > 0:
		title, box, c = "Finished with row errors", Styles.WarningBox, warningColor
	default:
		title, box, c = "No rows were "+strings.ToLower(verb), Styles.ErrorBox, errorColor
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", c.Sprint(title))
	fmt.Fprintf(&b, "%s %s\n", Styles.Key.Render("Entity:"), s.Entity)
	if s.FileName != "" {
		fmt.Fprintf(&b, "%s %s\n", Styles.Key.Render("File:"), s.FileName)
	}
	if s.ImportID != "" {
		fmt.Fprintf(&b, "%s %s\n", Styles.Key.Render("Import:"), s.ImportID)
	}
	fmt.Fprintf(&b, "%s %d of %d, skipped %d, failed %d",
		Styles.Key.Render(verb+":"), s.Imported, s.TotalRows, s.Skipped, s.Failed)
	return box.Render(b.String())
}

// PrintRowErrors lists row messages, at most limit of them when limit > 0.
func PrintRowErrors(w io.Writer, msgs []string, limit int) {
	if len(msgs) == 0 {
		return
	}
	PrintBold(w, "Row errors")
	for i, m := range msgs {
		if limit > 0 && i == limit {
			fmt.Fprintf(w, "  %s\n", Styles.Muted.Render(fmt.Sprintf("... and %d more", len(msgs)-limit)))
			return
		}
		fmt.Fprintf(w, "  • %s\n", m)
	}
}

// Schema renders one entity's columns with their type and whether the
// column is required on import.
func Schema(s *core.RecordSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Styles.Bold.Render(string(s.Kind)), Styles.Muted.Render("("+s.Table+")"))

	width := 0
	for _, f := range s.Fields {
		width = max(width, len(f.Name))
	}
	for _, f := range s.Fields {
		var notes []string
		if f.Required {
			notes = append(notes, "required")
		}
		if f.Default != "" {
			notes = append(notes, "default "+f.Default)
		}
		if len(f.Enum) > 0 {
			notes = append(notes, strings.Join(f.Enum, "|"))
		}
		line := fmt.Sprintf("  %-*s  %-8s", width, f.Name, f.TypeName())
		if len(notes) > 0 {
			line += "  " + Styles.Muted.Render(strings.Join(notes, ", "))
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	var keys []string
	for _, k := range s.UniqueKeys {
		keys = append(keys, k.Field)
	}
	if len(keys) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", Styles.Muted.Render("unique:"), strings.Join(keys, ", "))
	}
	return b.String()
}
