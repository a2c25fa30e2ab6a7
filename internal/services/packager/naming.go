package packager

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/killallgit/r2get/internal/models"
)

// Slug lower-cases name and joins its words with single hyphens.
// Path separators count as word breaks so the result is always a plain file name.
func Slug(name string) string {
	lowered := cases.Lower(language.Estonian).String(name)
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return r == '/' || r == '\\' || unicode.IsSpace(r)
	})
	return strings.Join(words, "-")
}

// FileName returns <slug>-<track>.<ext>. Tracks are 1-based.
func FileName(fullName string, track int, format models.FormatTag) string {
	return fmt.Sprintf("%s-%d%s", Slug(fullName), track, format.Extension())
}

// Title returns "<name> <date>", followed by " <track>" when the show has
// more than one track.
func Title(fullName string, date models.Date, track, total int) string {
	title := fmt.Sprintf("%s %s", strings.TrimSpace(fullName), date)
	if total > 1 {
		title += fmt.Sprintf(" %d", track)
	}
	return title
}
