package tmdb

import "strings"

// GenreMap is TMDB's static movie genre id table.
var GenreMap = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// genreNameToID is the reverse lookup, keyed by lowercase name.
var genreNameToID = func() map[string]int {
	m := make(map[string]int, len(GenreMap))
	for id, name := range GenreMap {
		m[strings.ToLower(name)] = id
	}
	return m
}()

// GenreID resolves a genre name to its TMDB id; ok is false for unknown names.
func GenreID(name string) (int, bool) {
	id, ok := genreNameToID[strings.ToLower(name)]
	return id, ok
}
