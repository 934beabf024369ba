package tui

import (
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck/internal/model"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
)

func buildFormFields() []formField {
	return []formField{
		{Label: "Title"},
		{Label: "Description"},
	}
}

func parseForm(fields []formField) (model.CreateTaskInput, error) {
	title := strings.TrimSpace(fields[fieldTitle].Value)
	if title == "" {
		return model.CreateTaskInput{}, fmt.Errorf("title is required")
	}

	return model.CreateTaskInput{
		Title:       title,
		Description: strings.TrimSpace(fields[fieldDescription].Value),
	}, nil
}
