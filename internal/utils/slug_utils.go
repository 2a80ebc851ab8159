package utils

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonAlphaNumRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRegex       = regexp.MustCompile(`[\s-]+`)
)

// SlugChecker reports whether a slug is already taken.
type SlugChecker func(ctx context.Context, slug string) (bool, error)

// Slugify turns "Go for Busy Devs!" into "go-for-busy-devs".
func Slugify(title string) string {
	lower := strings.ToLower(title)
	clean := nonAlphaNumRegex.ReplaceAllString(lower, "")
	slug := spaceRegex.ReplaceAllString(clean, "-")
	return strings.Trim(slug, "-")
}

// GenerateUniqueSlug tries base, base-2, base-3 and then random suffixes.
func GenerateUniqueSlug(ctx context.Context, title string, inUse SlugChecker) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "course"
	}

	slug := base
	for attempt := 1; attempt <= 10; attempt++ {
		taken, err := inUse(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug uniqueness: %w", err)
		}
		if !taken {
			return slug, nil
		}
		if attempt < 3 {
			slug = fmt.Sprintf("%s-%d", base, attempt+1)
		} else {
			slug = fmt.Sprintf("%s-%s", base, uuid.NewString()[:5])
		}
	}
	return "", fmt.Errorf("could not find a free slug for %q", title)
}
