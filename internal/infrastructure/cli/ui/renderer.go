package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/widgera/internal/application/reconcile"
	"github.com/doeshing/widgera/internal/domain"
)

const maxPromptPreview = 60

// RenderSchema prints the field list being edited.
func RenderSchema(out io.Writer, fields domain.Schema) {
	fmt.Fprintln(out, "Fields:")
	for i, f := range fields {
		fmt.Fprintf(out, "  %s\n", fieldLabel(i, f))
	}
}

// RenderRows prints reconciled rows as an aligned three-column table.
func RenderRows(out io.Writer, rows []domain.DisplayRow) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "(no output)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tTYPE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Name, row.Value, row.Type)
	}
	tw.Flush()
}

// RenderSubmission prints the settled state of a submission.
func RenderSubmission(out io.Writer, state domain.SubmissionState) {
	if state.Attachment.Notice != "" {
		fmt.Fprintf(out, "Note: %s\n", state.Attachment.Notice)
	}
	if state.Attachment.Attached() {
		fmt.Fprintf(out, "Image: %s (%s)\n", state.Attachment.Filename, state.Attachment.PreviewURL)
	}
	if state.Result.Error != "" {
		fmt.Fprintf(out, "Failed: %s\n", state.Result.Error)
		return
	}
	if state.Result.Output != nil {
		RenderRows(out, reconcile.Reconcile(state.Fields, state.Result.Output))
	}
}

// RenderHistoryList prints one line per record, newest first.
func RenderHistoryList(out io.Writer, records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tFIELDS\tIMAGE\tPROMPT")
	for _, rec := range records {
		image := "-"
		if rec.HasImage() {
			image = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", rec.ID, relativeTime(rec.CreatedAt.Time), len(rec.Fields), image, preview(rec.Prompt))
	}
	tw.Flush()
}

// RenderHistoryRecord prints one record through the same reconciler used
// for live results.
func RenderHistoryRecord(out io.Writer, rec domain.HistoryRecord) {
	fmt.Fprintf(out, "#%d  %s\n", rec.ID, formatTime(rec.CreatedAt.Time))
	fmt.Fprintf(out, "Prompt: %s\n", rec.Prompt)
	if rec.HasImage() {
		fmt.Fprintf(out, "Image: %s\n", rec.ImageURL)
	}
	fmt.Fprintln(out)
	RenderRows(out, reconcile.Reconcile(rec.Fields, rec.Output))
}

// RenderJournal prints local journal entries.
func RenderJournal(out io.Writer, entries []domain.JournalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Journal is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTATUS\tTOOK\tPROMPT")
	for _, e := range entries {
		status := "ok"
		if !e.Succeeded() {
			status = "failed: " + e.Error
		}
		took := (time.Duration(e.DurationMS) * time.Millisecond).String()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", relativeTime(e.Timestamp), status, took, preview(e.Prompt))
	}
	tw.Flush()
}

// RenderHealthReport prints doctor checks.
func RenderHealthReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(domain.TimestampFormat) + " (" + humanize.Time(t) + ")"
}

func preview(prompt string) string {
	prompt = strings.Join(strings.Fields(prompt), " ")
	runes := []rune(prompt)
	if len(runes) <= maxPromptPreview {
		return prompt
	}
	return string(runes[:maxPromptPreview-3]) + "..."
}

// RenderImages prints the user's uploaded images.
func RenderImages(out io.Writer, refs []domain.ImageRef) {
	if len(refs) == 0 {
		fmt.Fprintln(out, "No images uploaded yet.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tEXPIRES\tURL")
	for _, ref := range refs {
		name := ref.OriginalFilename
		if name == "" {
			name = "-"
		}
		expires := (time.Duration(ref.ExpiresInSeconds) * time.Second).String()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ref.ImageID, name, expires, ref.URL)
	}
	tw.Flush()
}
