package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var personTitleCaser = cases.Title(language.Und)

// suffixForms maps raw name suffix spellings to their canonical form.
// Generational numerals stay upper case.
var suffixForms = map[string]string{
	"JR":  "Jr",
	"JR.": "Jr",
	"SR":  "Sr",
	"SR.": "Sr",
	"II":  "II",
	"III": "III",
	"IV":  "IV",
	"V":   "V",
}

// NormalizeArtist validates an artist's entry fields and recomputes the
// stored derived fields (DisplayName, SortName, AlphaBucket). The filing
// parameter is the filed-under target when FiledUnderID is set; its sort
// fields take over so grouping by artist stays transitive. Passing filing as
// nil with FiledUnderID set is a programmer error and is rejected.
func NormalizeArtist(a *Artist, filing *Artist) error {
	if a == nil {
		return fmt.Errorf("normalize artist: nil artist")
	}

	switch a.Kind {
	case ArtistBand:
		name := collapseSpaces(a.NamePrimary)
		if name == "" {
			return fmt.Errorf("normalize artist: band requires a primary name")
		}
		a.NamePrimary = name
		a.NameSecondary = ""
		a.NameSuffix = ""
		a.DisplayName = name
		a.SortName = bandSortName(name)

	case ArtistPerson:
		first := normalizePersonName(a.NamePrimary)
		last := normalizePersonName(a.NameSecondary)
		if first == "" {
			return fmt.Errorf("normalize artist: person requires a first name")
		}
		if last == "" {
			return fmt.Errorf("normalize artist: person requires a last name")
		}

		suffix := strings.TrimSpace(a.NameSuffix)
		if canonical, ok := suffixForms[strings.ToUpper(suffix)]; ok {
			suffix = canonical
		}
		a.NamePrimary = first
		a.NameSecondary = last
		a.NameSuffix = suffix

		suffixPart := ""
		if suffix != "" {
			suffixPart = " " + suffix
		}
		a.DisplayName = first + " " + last + suffixPart
		a.SortName = last + ", " + first + suffixPart

	default:
		return fmt.Errorf("normalize artist: unknown kind %q", a.Kind)
	}

	a.AlphaBucket = alphaBucketFor(a.SortName)

	if a.FiledUnderID != nil {
		if filing == nil {
			return fmt.Errorf("normalize artist: filed-under target not loaded")
		}
		if a.ID != 0 && filing.ID == a.ID {
			return fmt.Errorf("normalize artist: an artist cannot be filed under itself")
		}
		a.SortName = filing.SortName
		a.AlphaBucket = filing.AlphaBucket
	}

	return nil
}

// bandSortName strips one leading "The " for filing; the display name keeps it.
func bandSortName(name string) string {
	n := collapseSpaces(name)
	if len(n) > 4 && strings.EqualFold(n[:4], "the ") {
		n = strings.TrimSpace(n[4:])
	}
	return n
}

func normalizePersonName(name string) string {
	n := collapseSpaces(name)
	if n == "" {
		return ""
	}
	return personTitleCaser.String(n)
}

func alphaBucketFor(sortName string) string {
	for _, r := range sortName {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
		return "#"
	}
	return "#"
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
