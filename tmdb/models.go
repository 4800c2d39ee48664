package tmdb

// Wire types for TMDB responses. Every field may be missing from a payload,
// so anything whose absence matters is a pointer or a nil-able slice.

// PageResponse is the envelope shared by /discover/movie and /search/movie.
type PageResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is a movie as it appears in list responses.
type MovieResult struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"original_title"`
	Overview         string   `json:"overview"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	ReleaseDate      string   `json:"release_date"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	GenreIDs         []int    `json:"genre_ids"`
	Adult            bool     `json:"adult"`
	OriginalLanguage string   `json:"original_language"`
	Popularity       float64  `json:"popularity"`
}

// MovieDetails is the /movie/{id} record. Credits is not part of that
// response; the client fills it from /movie/{id}/credits.
type MovieDetails struct {
	MovieResult

	Runtime             *int                `json:"runtime"`
	Genres              []GenreRecord       `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	Credits             *Credits            `json:"credits,omitempty"`
}

// GenreRecord is a genre object embedded in detail responses.
type GenreRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the response from /genre/movie/list.
type GenreListResponse struct {
	Genres []GenreRecord `json:"genres"`
}

// ProductionCompany represents a production company from TMDB.
type ProductionCompany struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits is the response from /movie/{id}/credits.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember represents a cast member from TMDB credits.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember represents a crew member from TMDB credits.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// ErrorResponse is an error body from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
