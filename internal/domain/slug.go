package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var slugInvalidChars = regexp.MustCompile("[^a-z0-9]+")

const maxSlugBaseLength = 50

// Slugify creates a URL-friendly slug from a name
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugBaseLength {
		slug = strings.TrimRight(slug[:maxSlugBaseLength], "-")
	}
	return slug
}

// UniqueSlug appends a short random suffix to the slugified name so two
// products with the same name never share a slug.
func UniqueSlug(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	base := Slugify(name)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
