package tmdb

// Raw TMDB wire shapes. Only the fields the service reads are declared;
// the rest of the provider payload is dropped at decode time.

type genreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type movieRecord struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	OriginalTitle string     `json:"original_title,omitempty"`
	Overview      string     `json:"overview"`
	PosterPath    string     `json:"poster_path"`
	BackdropPath  string     `json:"backdrop_path"`
	ReleaseDate   string     `json:"release_date"`
	VoteAverage   float64    `json:"vote_average"`
	VoteCount     int        `json:"vote_count"`
	Popularity    float64    `json:"popularity"`
	GenreIDs      []int      `json:"genre_ids,omitempty"`
	Genres        []genreRef `json:"genres,omitempty"`
}

type listResponse struct {
	Page         int           `json:"page"`
	Results      []movieRecord `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type castCredit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type crewCredit struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

type creditsBlock struct {
	Cast []castCredit `json:"cast"`
	Crew []crewCredit `json:"crew"`
}

// detailRecord doubles as the cache payload, so it round-trips through
// JSON unchanged.
type detailRecord struct {
	movieRecord
	Runtime int          `json:"runtime"`
	Tagline string       `json:"tagline"`
	Credits creditsBlock `json:"credits"`
}

type personRecord struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	ProfilePath        string  `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
}

type personSearchResponse struct {
	Results []personRecord `json:"results"`
}

type personDetailRecord struct {
	personRecord
	Biography    string `json:"biography"`
	Birthday     string `json:"birthday"`
	MovieCredits struct {
		Cast []movieRecord `json:"cast"`
	} `json:"movie_credits"`
}
