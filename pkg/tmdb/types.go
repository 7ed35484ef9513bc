package tmdb

// MovieRecord is the parsed enrichment payload for one film. Optional
// fields are nil when the source omits them; zero budget and revenue
// are treated as absent.
type MovieRecord struct {
	TMDBID int64

	Budget        *int64
	Revenue       *int64
	VoteAverage   *float64
	VoteCount     *int
	Popularity    *float64
	Certification *string
	Status        *string
	ReleaseDate   *string
	Homepage      *string

	CollectionID        *int64
	CollectionName      *string
	CollectionPosterURL *string

	Keywords            []string
	WatchProviders      map[string]interface{}
	Videos              []map[string]interface{}
	CastCredits         []map[string]interface{}
	CrewCredits         []map[string]interface{}
	ProductionCompanies []map[string]interface{}

	IMDBID      *string
	WikidataID  *string
	FacebookID  *string
	InstagramID *string
	TwitterID   *string
}

type movieResponse struct {
	ID          int64    `json:"id"`
	Budget      int64    `json:"budget"`
	Revenue     int64    `json:"revenue"`
	VoteAverage *float64 `json:"vote_average"`
	VoteCount   *int     `json:"vote_count"`
	Popularity  *float64 `json:"popularity"`
	Status      string   `json:"status"`
	ReleaseDate string   `json:"release_date"`
	Homepage    string   `json:"homepage"`

	BelongsToCollection *struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		PosterPath string `json:"poster_path"`
	} `json:"belongs_to_collection"`

	ProductionCompanies []struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		LogoPath      string `json:"logo_path"`
		OriginCountry string `json:"origin_country"`
	} `json:"production_companies"`

	ReleaseDates struct {
		Results []struct {
			ISO31661     string `json:"iso_3166_1"`
			ReleaseDates []struct {
				Certification string `json:"certification"`
			} `json:"release_dates"`
		} `json:"results"`
	} `json:"release_dates"`

	ExternalIDs struct {
		IMDBID      string `json:"imdb_id"`
		WikidataID  string `json:"wikidata_id"`
		FacebookID  string `json:"facebook_id"`
		InstagramID string `json:"instagram_id"`
		TwitterID   string `json:"twitter_id"`
	} `json:"external_ids"`

	Keywords struct {
		Keywords []struct {
			Name string `json:"name"`
		} `json:"keywords"`
	} `json:"keywords"`

	Credits struct {
		Cast []struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			Character   string `json:"character"`
			Order       int    `json:"order"`
			ProfilePath string `json:"profile_path"`
		} `json:"cast"`
		Crew []struct {
			ID          int64  `json:"id"`
			Name        string `json:"name"`
			Job         string `json:"job"`
			Department  string `json:"department"`
			ProfilePath string `json:"profile_path"`
		} `json:"crew"`
	} `json:"credits"`

	WatchProviders struct {
		Results map[string]struct {
			Link     string             `json:"link"`
			Flatrate []providerResponse `json:"flatrate"`
			Rent     []providerResponse `json:"rent"`
			Buy      []providerResponse `json:"buy"`
		} `json:"results"`
	} `json:"watch/providers"`

	Videos struct {
		Results []struct {
			ID       string `json:"id"`
			Key      string `json:"key"`
			Name     string `json:"name"`
			Site     string `json:"site"`
			Type     string `json:"type"`
			Official bool   `json:"official"`
		} `json:"results"`
	} `json:"videos"`
}

type providerResponse struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}
