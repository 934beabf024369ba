package tui

import (
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck/internal/model"
)

func formatTaskRow(task model.Task) string {
	summary := task.Title
	if task.Description != "" {
		summary = fmt.Sprintf("%s | %s", task.Title, truncate(task.Description, 40))
	}
	return fmt.Sprintf("%s | %s", summary, task.CreatedAt.Format("Jan 02 15:04"))
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func skeletonRows(count int) []string {
	rows := make([]string, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, "  "+strings.Repeat("░", 36))
	}
	return rows
}
