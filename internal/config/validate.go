package config

import (
	"fmt"
	"regexp"
	"strings"
)

// repoNamePattern validates GitHub owner and repository name segments.
var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidationError represents an updater config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the updater config for required fields and valid values.
func Validate(c *Updater) error {
	var errors []string

	if err := validateRepoSegment("owner", c.Owner); err != nil {
		errors = append(errors, err.Error())
	}
	if err := validateRepoSegment("repo", c.Repo); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.Channel.Validate(); err != nil {
		errors = append(errors, ValidationError{Field: "channel", Message: err.Error()}.Error())
	}
	if strings.ContainsAny(c.AssetName, "/\\") {
		errors = append(errors, ValidationError{Field: "asset_name", Message: "must be a bare filename"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateRepoSegment(field, value string) error {
	if value == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	if !repoNamePattern.MatchString(value) {
		return ValidationError{Field: field, Message: fmt.Sprintf("invalid value '%s'", value)}
	}
	return nil
}
