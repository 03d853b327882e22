// Package intent turns free-text chat input into a structured query using
// an ordered, first-match-wins rule cascade. The detectors are pure
// functions over the message string; none of the lookup tables are
// mutated at runtime.
package intent

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Intent is the structured result of running all detectors over a message.
type Intent struct {
	Mood   string  `json:"mood"`
	Decade *Decade `json:"decade,omitempty"`
	Artist string  `json:"artist,omitempty"`
}

// Extract runs all detectors over the message.
func Extract(message string) Intent {
	return Intent{
		Mood:   DetectMood(message),
		Decade: DetectDecade(message),
		Artist: DetectArtist(message),
	}
}

// DetectMood returns the first mood whose keyword pattern matches the
// message, or DefaultMood when none do.
func DetectMood(message string) string {
	for _, p := range moodPatterns {
		if matches(p.re, message) {
			return p.mood
		}
	}
	return DefaultMood
}

// ExplicitMood reports whether the detected mood was actually requested,
// as opposed to being the silent fallback. The default mood counts only
// when its own keywords appear in the message.
func ExplicitMood(message, mood string) bool {
	if mood != DefaultMood {
		return true
	}
	for _, p := range moodPatterns {
		if p.mood == DefaultMood {
			return matches(p.re, message)
		}
	}
	return false
}

// DetectDecade returns the year window of the first decade token contained
// in the message, or nil.
func DetectDecade(message string) *Decade {
	lower := strings.ToLower(message)
	for _, d := range decadeTokens {
		if strings.Contains(lower, d.token) {
			years := d.years
			return &years
		}
	}
	return nil
}

// DetectArtist runs the artist pattern cascade and returns the Title-Case
// name of the first accepted candidate, or "" when no pattern yields one.
// A candidate is accepted when, after stripping filler and common words,
// at least 2 meaningful words remain and the raw candidate had at most 4.
func DetectArtist(message string) string {
	for _, re := range artistPatterns {
		m, err := re.FindStringMatch(message)
		if err != nil || m == nil {
			continue
		}
		g := m.GroupByNumber(1)
		if g == nil || g.Length == 0 {
			continue
		}

		name := strings.TrimSpace(g.String())
		name = replaceFirst(leadingFiller, name)
		name = replaceFirst(trailingFiller, name)
		name = strings.TrimSpace(name)

		words := strings.Fields(strings.ToLower(name))
		meaningful := make([]string, 0, len(words))
		for _, w := range words {
			if _, ok := commonWords[w]; !ok {
				meaningful = append(meaningful, w)
			}
		}

		// Need at least a first and last name.
		if len(meaningful) < 2 || len(name) < 3 {
			continue
		}
		// Longer captures are incidental phrases, not names.
		if len(words) > 4 {
			continue
		}

		return titleCase(meaningful)
	}
	return ""
}

// GenresForMood returns the TMDB genre names associated with a mood for
// filmography post-filtering. Unknown moods map to nil.
func GenresForMood(mood string) []string {
	return moodGenres[mood]
}

func matches(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

func replaceFirst(re *regexp2.Regexp, s string) string {
	out, err := re.Replace(s, "", -1, 1)
	if err != nil {
		return s
	}
	return out
}

func titleCase(words []string) string {
	cased := make([]string, len(words))
	for i, w := range words {
		cased[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(cased, " ")
}
