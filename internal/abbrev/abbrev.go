// Package abbrev derives the 3-letter team codes shown on the board when the
// operator has not typed one.
package abbrev

import "strings"

// Placeholder is returned for names that contain no usable letters.
const Placeholder = "---"

// folder maps the diacritics that show up in Czech and neighbouring league
// rosters to their base Latin letter. Closed table; anything not listed and
// not A-Z is skipped.
var folder = strings.NewReplacer(
	"Á", "A", "Ä", "A", "Å", "A", "Â", "A", "À", "A",
	"Č", "C", "Ć", "C", "Ç", "C",
	"Ď", "D",
	"É", "E", "Ě", "E", "È", "E", "Ë", "E", "Ê", "E",
	"Í", "I", "Ì", "I", "Ï", "I", "Î", "I",
	"Ň", "N", "Ń", "N",
	"Ó", "O", "Ö", "O", "Ô", "O", "Ò", "O",
	"Ř", "R",
	"Š", "S", "Ś", "S",
	"Ť", "T",
	"Ú", "U", "Ů", "U", "Ù", "U", "Ü", "U", "Û", "U",
	"Ý", "Y",
	"Ž", "Z",
)

// Short derives a 3-character uppercase code from a team name. The first
// three A-Z letters win (after diacritic folding); shorter results are
// right-padded with '-'. Empty or letterless input yields Placeholder.
func Short(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return Placeholder
	}
	name = folder.Replace(strings.ToUpper(name))
	out := make([]rune, 0, 3)
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			out = append(out, r)
			if len(out) == 3 {
				break
			}
		}
	}
	for len(out) < 3 {
		out = append(out, '-')
	}
	return string(out)
}
