package intent

import "github.com/dlclark/regexp2"

// DefaultMood is the fallback returned when no mood keyword matches.
const DefaultMood = "cozy"

type moodPattern struct {
	mood string
	re   *regexp2.Regexp
}

// Ordered list: when keywords for several moods co-occur in one message,
// the first-declared mood wins.
var moodPatterns = []moodPattern{
	{"happy", regexp2.MustCompile(`\b(happy|joyful|cheerful|upbeat|fun|laugh|funny|comedy|hilarious)\b`, regexp2.IgnoreCase)},
	{"sad", regexp2.MustCompile(`\b(sad|down|depressed|melancholy|cry|emotional|heartbreak)\b`, regexp2.IgnoreCase)},
	{"excited", regexp2.MustCompile(`\b(excited|thrilling|action|adventure|adrenaline|intense|epic)\b`, regexp2.IgnoreCase)},
	{"relaxed", regexp2.MustCompile(`\b(relax|chill|calm|peaceful|easy|light)\b`, regexp2.IgnoreCase)},
	{"cozy", regexp2.MustCompile(`\b(cozy|cosy|comfort|warm|feel.?good|heartwarming|wholesome)\b`, regexp2.IgnoreCase)},
	{"nostalgic", regexp2.MustCompile(`\b(nostalgic|nostalgia|classic|old|remember|childhood|retro)\b`, regexp2.IgnoreCase)},
	{"romantic", regexp2.MustCompile(`\b(romantic|romance|love|date|couple|relationship)\b`, regexp2.IgnoreCase)},
	{"scared", regexp2.MustCompile(`\b(scared|horror|scary|thriller|suspense|creepy|terrifying)\b`, regexp2.IgnoreCase)},
	{"thoughtful", regexp2.MustCompile(`\b(thoughtful|think|intellectual|documentary|deep|philosophical|mind)\b`, regexp2.IgnoreCase)},
	{"curious", regexp2.MustCompile(`\b(curious|mystery|detective|crime|whodunit|investigate)\b`, regexp2.IgnoreCase)},
}

// Decade is an inclusive release-year window.
type Decade struct {
	YearFrom int `json:"yearFrom"`
	YearTo   int `json:"yearTo"`
}

type decadeToken struct {
	token string
	years Decade
}

// Ordered substring tokens; "1980s" is caught by the earlier "80s" token,
// which maps to the same window.
var decadeTokens = []decadeToken{
	{"80s", Decade{1980, 1989}},
	{"1980s", Decade{1980, 1989}},
	{"90s", Decade{1990, 1999}},
	{"1990s", Decade{1990, 1999}},
	{"2000s", Decade{2000, 2009}},
	{"2010s", Decade{2010, 2019}},
	{"2020s", Decade{2020, 2029}},
}

// Artist extraction patterns. ORDER MATTERS: specific multi-keyword forms
// come before the generic capitalized-phrase catch-alls so incidental
// capitalization does not misfire. The final catch-all is deliberately
// case-sensitive.
var artistPatterns = []*regexp2.Regexp{
	// "[genre] starring/with/featuring [name]" at end of message
	regexp2.MustCompile(`(?:starring|featuring|with)\s+([a-z]+(?:\s+[a-z]+)+)\s*$`, regexp2.IgnoreCase),
	// "movies with/starring/featuring/by [name]" bounded by delimiters
	regexp2.MustCompile(`movies?\s+(?:with|starring|featuring|by)\s+(.+?)(?:\s*$|\s*,|\s+and\s|\s+in\s|\s+from\s)`, regexp2.IgnoreCase),
	// "films with/starring/featuring/by [name]"
	regexp2.MustCompile(`films?\s+(?:with|starring|featuring|by)\s+(.+?)(?:\s*$|\s*,)`, regexp2.IgnoreCase),
	// "show/find/get/recommend me [name] movies"
	regexp2.MustCompile(`(?:show|find|get|recommend)\s+me\s+(.+?)\s+(?:movies?|films?)`, regexp2.IgnoreCase),
	// "show me some [name] movies"
	regexp2.MustCompile(`(?:show|find|get|recommend)\s+me\s+some\s+(.+?)\s+(?:movies?|films?)`, regexp2.IgnoreCase),
	// "what movies has [name] been in"
	regexp2.MustCompile(`(?:what|which)\s+movies?\s+(?:has|did|does|is)\s+(.+?)\s+(?:in|star|act|been)`, regexp2.IgnoreCase),
	// "[Name] movies" as the whole message
	regexp2.MustCompile(`^(?:now\s+)?(?:show\s+me\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\s+(?:movies?|films?)$`, regexp2.IgnoreCase),
	// bare "[Name]" message, optionally prefixed with please
	regexp2.MustCompile(`^(?:please\s+)?([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\s*$`, regexp2.IgnoreCase),
	// catch-all: a capitalized First Last anywhere
	regexp2.MustCompile(`\b([A-Z][a-z]+\s+[A-Z][a-z]+)\b`, regexp2.None),
}

var (
	leadingFiller  = regexp2.MustCompile(`^(now|please|some|more)\s+`, regexp2.IgnoreCase)
	trailingFiller = regexp2.MustCompile(`\s+(please|now)$`, regexp2.IgnoreCase)
)

// commonWords are tokens that never count toward an artist name: filler,
// genre words, and the keywords that introduce the name itself.
var commonWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "some": {}, "any": {}, "good": {}, "great": {},
	"best": {}, "top": {}, "new": {}, "old": {},
	"funny": {}, "scary": {}, "romantic": {}, "action": {}, "comedy": {},
	"drama": {}, "thriller": {}, "horror": {},
	"classic": {}, "modern": {}, "recent": {}, "popular": {}, "famous": {},
	"cozy": {}, "feel": {}, "more": {},
	"something": {}, "anything": {}, "nothing": {}, "everything": {},
	"movie": {}, "movies": {}, "film": {}, "films": {},
	"show": {}, "me": {}, "now": {}, "please": {}, "can": {}, "you": {}, "i": {},
	"want": {}, "like": {}, "love": {}, "need": {},
	"find": {}, "get": {}, "recommend": {}, "suggest": {}, "give": {},
	"romance": {}, "adventure": {}, "mystery": {}, "fantasy": {}, "sci-fi": {},
	"scifi": {}, "animation": {}, "documentary": {}, "crime": {}, "war": {},
	"western": {}, "musical": {}, "family": {}, "history": {},
	"starring": {}, "featuring": {}, "with": {}, "by": {}, "from": {},
}

// moodGenres maps a mood to TMDB genre names for post-filtering an
// artist's filmography. This is intentionally a different table from the
// provider's mood search profiles.
var moodGenres = map[string][]string{
	"happy":      {"Comedy", "Animation", "Family"},
	"sad":        {"Drama", "Romance"},
	"excited":    {"Action", "Adventure", "Thriller"},
	"relaxed":    {"Comedy", "Family", "Animation"},
	"cozy":       {"Comedy", "Family", "Animation", "Romance"},
	"nostalgic":  {"Drama", "Comedy", "Family"},
	"romantic":   {"Romance", "Comedy", "Drama"},
	"scared":     {"Horror", "Thriller", "Mystery"},
	"thoughtful": {"Documentary", "Drama", "Science Fiction"},
	"curious":    {"Documentary", "Mystery", "Science Fiction", "Crime"},
	"melancholy": {"Drama", "Romance"},
	"energetic":  {"Action", "Adventure", "Music"},
	"mysterious": {"Mystery", "Thriller", "Crime"},
}
