package survey

import (
	"regexp"
	"strings"

	"github.com/gofrs/uuid"
)

var reNoIdent = regexp.MustCompile(`\W+`)

// Slugify derives the public URL slug of a survey from its title, with a
// random suffix so equal titles never collide. The slug is generated once
// at creation and stays stable across updates.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = reNoIdent.ReplaceAllLiteralString(slug, " ")
	slug = strings.Join(strings.Fields(slug), "-")

	suffix := uuid.Must(uuid.NewV4()).String()[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
