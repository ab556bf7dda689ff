package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var groupSlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateGroupSlug accepts lowercase words joined by single hyphens, at most 50 characters.
func ValidateGroupSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > 50 {
		return fmt.Errorf("slug must not exceed 50 characters")
	}
	if !groupSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug may contain only lowercase letters, numbers, and single hyphens between them")
	}
	return nil
}

// ValidateGroupTitle requires a non-blank title of at most 200 characters.
func ValidateGroupTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len([]rune(title)) > 200 {
		return fmt.Errorf("title must not exceed 200 characters")
	}
	return nil
}
