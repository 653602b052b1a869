// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskman/internal/service"
)

// TimeLayout is how created_at is printed.
const TimeLayout = "2006-01-02 15:04"

// FormatTask formats one task line for the list.
// Format: "{ID:>4}  [{x| }]  {PRIORITY:<6}  {TITLE}\n"
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4s  %s  %-6s  %s\n", task.ID, statusMark(task.Status), task.Priority, NormalizeTitle(task.Title))
}

// FormatPageFooter formats the page position below the list.
// An empty result reports page 1 of 1.
func FormatPageFooter(w io.Writer, page, pageCount int) {
	fmt.Fprintf(w, "page %d of %d\n", page, max(pageCount, 1))
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", NormalizeTitle(task.Title))
	fmt.Fprintf(w, "priority:    %s\n", task.Priority)
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.In(time.UTC).Format(TimeLayout))
	}
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintln(w, "description:")
		for _, line := range strings.Split(desc, "\n") {
			fmt.Fprintf(w, "  %s\n", strings.TrimRight(line, "\r"))
		}
	}
}

func statusMark(s service.Status) string {
	if s == service.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
