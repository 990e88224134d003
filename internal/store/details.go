package store

import (
	"context"
	"slices"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/sourcegraph/conc/pool"
)

// CurrentItem identifies the title the details view is showing.
type CurrentItem struct {
	ID        int              `json:"id"`
	MediaType models.MediaType `json:"mediaType"`
}

// DetailsState holds the selected title and its sub-resources, each with its own lifecycle.
type DetailsState struct {
	CurrentItem     *CurrentItem                   `json:"currentItem"`
	Details         Resource[*models.MediaDetails] `json:"details"`
	Credits         Resource[*models.Credits]      `json:"credits"`
	Videos          Resource[[]models.Video]       `json:"videos"`
	Images          Resource[*models.Images]       `json:"images"`
	Recommendations MediaCollection                `json:"recommendations"`
}

func initialDetails() DetailsState {
	idle := Lifecycle{Status: StatusIdle}
	return DetailsState{
		Details:         Resource[*models.MediaDetails]{Lifecycle: idle},
		Credits:         Resource[*models.Credits]{Lifecycle: idle},
		Videos:          Resource[[]models.Video]{Data: []models.Video{}, Lifecycle: idle},
		Images:          Resource[*models.Images]{Lifecycle: idle},
		Recommendations: emptyCollection(),
	}
}

func (d DetailsState) clone() DetailsState {
	d.CurrentItem = clonePtr(d.CurrentItem)
	if d.Details.Data != nil {
		v := *d.Details.Data
		v.Genres = slices.Clone(v.Genres)
		d.Details.Data = &v
	}
	if d.Credits.Data != nil {
		v := *d.Credits.Data
		v.Cast = slices.Clone(v.Cast)
		v.Crew = slices.Clone(v.Crew)
		d.Credits.Data = &v
	}
	if d.Images.Data != nil {
		v := *d.Images.Data
		v.Posters = slices.Clone(v.Posters)
		v.Backdrops = slices.Clone(v.Backdrops)
		d.Images.Data = &v
	}
	d.Videos = cloneResource(d.Videos)
	d.Recommendations = cloneResource(d.Recommendations)
	return d
}

// is reports whether c is the (t, id) title. A nil selection matches nothing.
func (c *CurrentItem) is(t models.MediaType, id int) bool {
	return c != nil && c.ID == id && c.MediaType == t
}

// setCurrentItem selects a title. Selecting a different title drops the previous title's data.
func setCurrentItem(d DetailsState, t models.MediaType, id int) DetailsState {
	if d.CurrentItem.is(t, id) {
		return d
	}
	next := initialDetails()
	next.CurrentItem = &CurrentItem{ID: id, MediaType: t}
	return next
}

// DetailsSlice owns [DetailsState].
type DetailsSlice struct {
	store *Store
}

// fetchDetail loads one sub-resource of (t, id). Outcomes that arrive after another title was selected are dropped.
func fetchDetail[T any](ctx context.Context, d *DetailsSlice, op string, t models.MediaType, id int, pick func(*State) *Resource[T], call func(context.Context) services.Result[T]) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}
	_, err := run(ctx, d.store, request[T]{
		slice:     "details",
		op:        op,
		lifecycle: func(st *State) *Lifecycle { return &pick(st).Lifecycle },
		call:      call,
		pending:   func(st *State) { st.Details = setCurrentItem(st.Details, t, id) },
		fulfilled: func(st *State, v T) { pick(st).Data = v },
		current:   func(st *State) bool { return st.Details.CurrentItem.is(t, id) },
	})
	return err
}

func (d *DetailsSlice) FetchDetails(ctx context.Context, t models.MediaType, id int) error {
	return fetchDetail(ctx, d, "details", t, id,
		func(st *State) *Resource[*models.MediaDetails] { return &st.Details.Details },
		func(ctx context.Context) services.Result[*models.MediaDetails] {
			return services.Map(d.store.clients.Catalog.Details(ctx, t, id), func(m models.MediaDetails) *models.MediaDetails { return &m })
		},
	)
}

func (d *DetailsSlice) FetchCredits(ctx context.Context, t models.MediaType, id int) error {
	return fetchDetail(ctx, d, "credits", t, id,
		func(st *State) *Resource[*models.Credits] { return &st.Details.Credits },
		func(ctx context.Context) services.Result[*models.Credits] {
			return services.Map(d.store.clients.Catalog.Credits(ctx, t, id), func(c models.Credits) *models.Credits { return &c })
		},
	)
}

func (d *DetailsSlice) FetchVideos(ctx context.Context, t models.MediaType, id int) error {
	return fetchDetail(ctx, d, "videos", t, id,
		func(st *State) *Resource[[]models.Video] { return &st.Details.Videos },
		func(ctx context.Context) services.Result[[]models.Video] { return d.store.clients.Catalog.Videos(ctx, t, id) },
	)
}

func (d *DetailsSlice) FetchImages(ctx context.Context, t models.MediaType, id int) error {
	return fetchDetail(ctx, d, "images", t, id,
		func(st *State) *Resource[*models.Images] { return &st.Details.Images },
		func(ctx context.Context) services.Result[*models.Images] {
			return services.Map(d.store.clients.Catalog.Images(ctx, t, id), func(i models.Images) *models.Images { return &i })
		},
	)
}

func (d *DetailsSlice) FetchRecommendations(ctx context.Context, t models.MediaType, id int) error {
	return fetchDetail(ctx, d, "recommendations", t, id,
		func(st *State) *MediaCollection { return &st.Details.Recommendations },
		func(ctx context.Context) services.Result[[]models.MediaItem] {
			return d.store.clients.Catalog.Recommendations(ctx, t, id)
		},
	)
}

// FetchAll loads details and every sub-resource concurrently. Failures are joined; each is also recorded on its resource.
func (d *DetailsSlice) FetchAll(ctx context.Context, t models.MediaType, id int) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}
	d.SetCurrentItem(t, id)

	p := pool.New().WithErrors()
	for _, fetch := range []func(context.Context, models.MediaType, int) error{
		d.FetchDetails, d.FetchCredits, d.FetchVideos, d.FetchImages, d.FetchRecommendations,
	} {
		p.Go(func() error { return fetch(ctx, t, id) })
	}
	return p.Wait()
}

// SetCurrentItem selects a title; a different title clears previously loaded data.
func (d *DetailsSlice) SetCurrentItem(t models.MediaType, id int) {
	d.store.commit(func(st *State) { st.Details = setCurrentItem(st.Details, t, id) })
}

func (d *DetailsSlice) Clear() {
	d.store.commit(func(st *State) { st.Details = initialDetails() })
}
