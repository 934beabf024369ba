package tui

import (
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/model"
)

func TestParseFormRequiresTitle(t *testing.T) {
	fields := buildFormFields()
	fields[fieldTitle].Value = "   "
	fields[fieldDescription].Value = "details"

	if _, err := parseForm(fields); err == nil {
		t.Fatalf("expected error for blank title")
	}

	fields[fieldTitle].Value = "  Buy milk  "
	input, err := parseForm(fields)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if input.Title != "Buy milk" {
		t.Fatalf("expected trimmed title, got %q", input.Title)
	}
	if input.Description != "details" {
		t.Fatalf("expected description, got %q", input.Description)
	}
}

func TestMoveSelectionClamps(t *testing.T) {
	ui := &UI{
		tasks: []model.Task{{ID: 1}, {ID: 2}, {ID: 3}},
	}

	if err := ui.moveUp(nil, nil); err != nil {
		t.Fatalf("move up: %v", err)
	}
	if ui.selected != 0 {
		t.Fatalf("expected selection to stay at 0, got %d", ui.selected)
	}

	for i := 0; i < 5; i++ {
		if err := ui.moveDown(nil, nil); err != nil {
			t.Fatalf("move down: %v", err)
		}
	}
	if ui.selected != 2 {
		t.Fatalf("expected selection clamped at 2, got %d", ui.selected)
	}

	if err := ui.moveUp(nil, nil); err != nil {
		t.Fatalf("move up: %v", err)
	}
	if ui.selected != 1 {
		t.Fatalf("expected selection 1, got %d", ui.selected)
	}
}

func TestMoveSelectionIgnoredWhileModalOpen(t *testing.T) {
	ui := &UI{
		tasks: []model.Task{{ID: 1}, {ID: 2}},
		form:  &formState{fields: buildFormFields()},
	}

	if err := ui.moveDown(nil, nil); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if ui.selected != 0 {
		t.Fatalf("expected selection unchanged while form open, got %d", ui.selected)
	}
}

func TestOpenConfirmUsesSelectedTask(t *testing.T) {
	ui := &UI{
		tasks:    []model.Task{{ID: 1, Title: "first"}, {ID: 2, Title: "second"}},
		selected: 1,
	}

	if err := ui.openConfirm(nil, nil); err != nil {
		t.Fatalf("open confirm: %v", err)
	}
	if ui.confirm == nil {
		t.Fatalf("expected confirm state")
	}
	if ui.confirm.task.ID != 2 {
		t.Fatalf("expected task 2, got %d", ui.confirm.task.ID)
	}

	if err := ui.openForm(nil, nil); err != nil {
		t.Fatalf("open form: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form blocked while confirm open")
	}
}

func TestOpenConfirmWithoutTasksIsNoop(t *testing.T) {
	ui := &UI{}
	if err := ui.openConfirm(nil, nil); err != nil {
		t.Fatalf("open confirm: %v", err)
	}
	if ui.confirm != nil {
		t.Fatalf("expected no confirm state without tasks")
	}
}

func TestCloseNoticeStopsTimer(t *testing.T) {
	ui := &UI{noticeTTL: time.Hour}

	ui.showNotice(noticeSuccess, "done")
	if ui.notice == nil {
		t.Fatalf("expected notice")
	}
	timer := ui.notice.timer
	if timer == nil {
		t.Fatalf("expected dismissal timer")
	}

	ui.closeNotice()
	if ui.notice != nil {
		t.Fatalf("expected notice cleared")
	}
	if timer.Stop() {
		t.Fatalf("expected timer already stopped")
	}
}

func TestShowNoticeReplacesPrevious(t *testing.T) {
	ui := &UI{noticeTTL: time.Hour}

	ui.showNotice(noticeInfo, "first")
	first := ui.notice.timer
	ui.showNotice(noticeError, "second")

	if ui.notice.message != "second" {
		t.Fatalf("expected latest notice, got %q", ui.notice.message)
	}
	if ui.notice.kind != noticeError {
		t.Fatalf("expected error notice, got %q", ui.notice.kind)
	}
	if first.Stop() {
		t.Fatalf("expected previous timer stopped")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged text, got %q", got)
	}
	if got := truncate("a very long description", 10); got != "a very ..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncate("anything", 0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFormatTaskRow(t *testing.T) {
	created := time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)

	row := formatTaskRow(model.Task{Title: "Buy milk", CreatedAt: created})
	if row != "Buy milk | Mar 04 09:30" {
		t.Fatalf("unexpected row: %q", row)
	}

	row = formatTaskRow(model.Task{Title: "Buy milk", Description: "two liters", CreatedAt: created})
	if row != "Buy milk | two liters | Mar 04 09:30" {
		t.Fatalf("unexpected row: %q", row)
	}
}

func TestSkeletonRows(t *testing.T) {
	rows := skeletonRows(3)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}
