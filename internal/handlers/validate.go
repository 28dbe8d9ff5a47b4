package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for API inputs.
const (
	maxFolderNameLen = 120
	maxUploadBatch   = 50
	maxFileNameLen   = 255
	maxTitleLen      = 300
	maxDescLen       = 5_000
	maxLocationLen   = 300
	maxAttachBatch   = 200
)

// validateFolderName checks a folder name and returns the first error found.
func validateFolderName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Folder name is required."
	}
	if utf8.RuneCountInString(name) > maxFolderNameLen {
		return "Folder name is too long (max 120 characters)."
	}
	return ""
}

// validateRunInput checks run metadata fields.
func validateRunInput(title, description, location *string) string {
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescLen {
		return "Description is too long (max 5,000 characters)."
	}
	if location != nil && utf8.RuneCountInString(*location) > maxLocationLen {
		return "Location is too long (max 300 characters)."
	}
	return ""
}
