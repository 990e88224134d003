package server

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
)

//go:embed fixtures/catalog.json
var catalogFixture []byte

const (
	listSize     = 20
	trendingSize = 6
)

type title struct {
	models.MediaDetails
	Cast     []string `json:"cast"`
	Director string   `json:"director"`
}

type catalog struct {
	Genres map[models.MediaType][]models.Genre `json:"genres"`
	Movies []title                             `json:"movies"`
	TV     []title                             `json:"tv"`
}

func loadCatalog() (*catalog, error) {
	var c catalog
	if err := json.Unmarshal(catalogFixture, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog fixture: %w", err)
	}
	for i := range c.Movies {
		c.Movies[i].MediaType = models.MediaTypeMovie
	}
	for i := range c.TV {
		c.TV[i].MediaType = models.MediaTypeTV
	}
	return &c, nil
}

func (c *catalog) titles(t models.MediaType) []title {
	if t == models.MediaTypeTV {
		return c.TV
	}
	return c.Movies
}

func (c *catalog) find(t models.MediaType, id int) (title, bool) {
	i := slices.IndexFunc(c.titles(t), func(m title) bool { return m.ID == id })
	if i < 0 {
		return title{}, false
	}
	return c.titles(t)[i], true
}

func items(titles []title) []models.MediaItem {
	out := make([]models.MediaItem, len(titles))
	for i, m := range titles {
		out[i] = m.MediaItem
	}
	return out
}

// ranked returns at most n items ordered by key descending.
func ranked(list []models.MediaItem, n int, key func(models.MediaItem) float64) []models.MediaItem {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b models.MediaItem) int { return cmp.Compare(key(b), key(a)) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func byPopularity(m models.MediaItem) float64 { return m.Popularity }
func byRating(m models.MediaItem) float64     { return m.VoteAverage }

func (c *catalog) popular(t models.MediaType) []models.MediaItem {
	return ranked(items(c.titles(t)), listSize, byPopularity)
}

func (c *catalog) topRated(t models.MediaType) []models.MediaItem {
	return ranked(items(c.titles(t)), listSize, byRating)
}

func (c *catalog) running() []models.MediaItem {
	var out []models.MediaItem
	for _, m := range c.TV {
		if m.Status == "Returning Series" {
			out = append(out, m.MediaItem)
		}
	}
	return out
}

type resultsBody struct {
	Results []models.MediaItem `json:"results"`
}

func writeResults(w http.ResponseWriter, list []models.MediaItem) {
	if list == nil {
		list = []models.MediaItem{}
	}
	writeJSON(w, http.StatusOK, resultsBody{Results: list})
}

func (a *StubAPI) allMovies(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			PopularMovies  []models.MediaItem `json:"popularMovies"`
			TopRatedMovies []models.MediaItem `json:"topRatedMovies"`
		} `json:"data"`
	}
	body.Data.PopularMovies = a.catalog.popular(models.MediaTypeMovie)
	body.Data.TopRatedMovies = a.catalog.topRated(models.MediaTypeMovie)
	writeJSON(w, http.StatusOK, body)
}

func (a *StubAPI) allTVShows(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			PopularTVShows  []models.MediaItem `json:"popularTVShows"`
			TopRatedTVShows []models.MediaItem `json:"topRatedTVShows"`
		} `json:"data"`
	}
	body.Data.PopularTVShows = a.catalog.popular(models.MediaTypeTV)
	body.Data.TopRatedTVShows = a.catalog.topRated(models.MediaTypeTV)
	writeJSON(w, http.StatusOK, body)
}

func (a *StubAPI) trending(w http.ResponseWriter, r *http.Request) {
	all := slices.Concat(items(a.catalog.Movies), items(a.catalog.TV))
	writeResults(w, ranked(all, trendingSize, byPopularity))
}

func (a *StubAPI) airingToday(w http.ResponseWriter, r *http.Request) {
	running := a.catalog.running()
	writeResults(w, running[:min(2, len(running))])
}

func (a *StubAPI) onTheAir(w http.ResponseWriter, r *http.Request) {
	writeResults(w, a.catalog.running())
}

func (a *StubAPI) popular(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResults(w, a.catalog.popular(t))
	}
}

func (a *StubAPI) topRated(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResults(w, a.catalog.topRated(t))
	}
}

func (a *StubAPI) genres(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]models.Genre{"genres": a.catalog.Genres[t]})
	}
}

func (a *StubAPI) search(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	var matches []models.MediaItem
	for _, m := range slices.Concat(a.catalog.Movies, a.catalog.TV) {
		if strings.Contains(strings.ToLower(m.DisplayTitle()), query) {
			matches = append(matches, m.MediaItem)
		}
	}
	writeResults(w, ranked(matches, listSize, byPopularity))
}

// lookup resolves the {id} path value to a catalog title, writing 404 when it is unknown.
func (a *StubAPI) lookup(w http.ResponseWriter, r *http.Request, t models.MediaType) (title, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return title{}, false
	}
	m, ok := a.catalog.find(t, id)
	if !ok {
		writeError(w, http.StatusNotFound, "Media not found")
		return title{}, false
	}
	return m, true
}

func (a *StubAPI) details(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := a.lookup(w, r, t)
		if !ok {
			return
		}
		d := m.MediaDetails
		for _, gid := range d.GenreIDs {
			if i := slices.IndexFunc(a.catalog.Genres[t], func(g models.Genre) bool { return g.ID == gid }); i >= 0 {
				d.Genres = append(d.Genres, a.catalog.Genres[t][i])
			}
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func (a *StubAPI) credits(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := a.lookup(w, r, t)
		if !ok {
			return
		}
		credits := models.Credits{Cast: []models.CastMember{}, Crew: []models.CrewMember{}}
		for i, name := range m.Cast {
			credits.Cast = append(credits.Cast, models.CastMember{ID: m.ID*100 + i, Name: name, Order: i})
		}
		if m.Director != "" {
			job := "Director"
			if t == models.MediaTypeTV {
				job = "Creator"
			}
			credits.Crew = append(credits.Crew, models.CrewMember{ID: m.ID*100 + 99, Name: m.Director, Job: job, Department: "Directing"})
		}
		writeJSON(w, http.StatusOK, credits)
	}
}

func (a *StubAPI) videos(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := a.lookup(w, r, t)
		if !ok {
			return
		}
		trailer := models.Video{
			ID:       fmt.Sprintf("%s-%d-trailer", t, m.ID),
			Key:      fmt.Sprintf("%s%d", t, m.ID),
			Name:     m.DisplayTitle() + " | Official Trailer",
			Site:     "YouTube",
			Type:     "Trailer",
			Official: true,
		}
		writeJSON(w, http.StatusOK, map[string][]models.Video{"results": {trailer}})
	}
}

func (a *StubAPI) images(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := a.lookup(w, r, t)
		if !ok {
			return
		}
		images := models.Images{Backdrops: []models.Image{}, Posters: []models.Image{}}
		if m.PosterPath != "" {
			images.Posters = append(images.Posters, models.Image{FilePath: m.PosterPath, Width: 500, Height: 750, AspectRatio: 0.667})
		}
		if m.BackdropPath != "" {
			images.Backdrops = append(images.Backdrops, models.Image{FilePath: m.BackdropPath, Width: 1280, Height: 720, AspectRatio: 1.778})
		}
		writeJSON(w, http.StatusOK, images)
	}
}

// recommendations lists other titles of the same type sharing at least one genre.
func (a *StubAPI) recommendations(t models.MediaType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := a.lookup(w, r, t)
		if !ok {
			return
		}
		var similar []models.MediaItem
		for _, other := range a.catalog.titles(t) {
			if other.ID == m.ID {
				continue
			}
			if slices.ContainsFunc(other.GenreIDs, func(g int) bool { return slices.Contains(m.GenreIDs, g) }) {
				similar = append(similar, other.MediaItem)
			}
		}
		writeResults(w, ranked(similar, listSize, byRating))
	}
}
