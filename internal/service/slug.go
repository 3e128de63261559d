package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"pagebuilder/internal/domain"
)

var (
	ErrSlugTaken   = errors.New("slug already in use")
	ErrInvalidSlug = errors.New("slug must be lowercase letters, digits and single dashes")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify derives a url-safe slug from title. Titles without any usable
// rune become "page".
func Slugify(title string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
			dash = false
		case sb.Len() > 0 && !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

// resolveSlug returns the slug for page selfID. An explicit slug must be
// free; a derived one gets a numeric suffix until it is.
func resolveSlug(pages domain.PageStore, title, slug, selfID string) (string, error) {
	taken := func(s string) (bool, error) {
		p, err := pages.GetPageBySlug(s)
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return p.ID != selfID, nil
	}

	if slug != "" {
		if !slugPattern.MatchString(slug) {
			return "", fmt.Errorf("%q: %w", slug, ErrInvalidSlug)
		}
		busy, err := taken(slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if busy {
			return "", fmt.Errorf("%q: %w", slug, ErrSlugTaken)
		}
		return slug, nil
	}

	base := Slugify(title)
	candidate := base
	for n := 2; ; n++ {
		busy, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !busy {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
