package store

import (
	"context"
	"slices"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// MaxRecentlyViewed caps the recently viewed list.
const MaxRecentlyViewed = 20

// UserState holds the extended profile and client-side activity.
type UserState struct {
	Profile     *models.UserProfile `json:"profile"`
	Preferences models.Preferences  `json:"preferences"`
	Settings    models.Settings     `json:"settings"`
	Activity    models.Activity     `json:"activity"`
	Lifecycle
}

func initialUser() UserState {
	return UserState{
		Activity: models.Activity{
			RecentlyViewed: []models.MediaItem{},
			Favorites:      []models.MediaItem{},
			Ratings:        []models.Rating{},
		},
		Lifecycle: Lifecycle{Status: StatusIdle},
	}
}

func (u UserState) clone() UserState {
	u.Profile = clonePtr(u.Profile)
	u.Preferences.FavoriteGenres = slices.Clone(u.Preferences.FavoriteGenres)
	u.Activity = models.Activity{
		RecentlyViewed: slices.Clone(u.Activity.RecentlyViewed),
		Favorites:      slices.Clone(u.Activity.Favorites),
		Ratings:        slices.Clone(u.Activity.Ratings),
	}
	return u
}

// addRecentlyViewed moves item to the front, dropping any older copy with the same id.
func addRecentlyViewed(a models.Activity, item models.MediaItem) models.Activity {
	rest := slices.DeleteFunc(slices.Clone(a.RecentlyViewed), func(m models.MediaItem) bool { return m.ID == item.ID })
	viewed := append([]models.MediaItem{item}, rest...)
	a.RecentlyViewed = viewed[:min(len(viewed), MaxRecentlyViewed)]
	return a
}

// addFavorite appends item unless a favorite with the same id exists.
func addFavorite(a models.Activity, item models.MediaItem) models.Activity {
	if slices.ContainsFunc(a.Favorites, func(m models.MediaItem) bool { return m.ID == item.ID }) {
		return a
	}
	a.Favorites = append(slices.Clone(a.Favorites), item)
	return a
}

func removeFavorite(a models.Activity, id int) models.Activity {
	a.Favorites = slices.DeleteFunc(slices.Clone(a.Favorites), func(m models.MediaItem) bool { return m.ID == id })
	return a
}

// setRating stores r, replacing any earlier rating for the same media id.
func setRating(a models.Activity, r models.Rating) models.Activity {
	ratings := slices.Clone(a.Ratings)
	if i := slices.IndexFunc(ratings, func(x models.Rating) bool { return x.MediaID == r.MediaID }); i >= 0 {
		ratings[i] = r
	} else {
		ratings = append(ratings, r)
	}
	a.Ratings = ratings
	return a
}

func removeRating(a models.Activity, mediaID int) models.Activity {
	a.Ratings = slices.DeleteFunc(slices.Clone(a.Ratings), func(x models.Rating) bool { return x.MediaID == mediaID })
	return a
}

// UserSlice owns [UserState].
type UserSlice struct {
	store *Store
}

func userLifecycle(st *State) *Lifecycle { return &st.User.Lifecycle }

// FetchProfile loads the profile, preferences and settings.
func (u *UserSlice) FetchProfile(ctx context.Context) error {
	_, err := run(ctx, u.store, request[services.ProfilePayload]{
		slice:     "user",
		op:        "fetch_profile",
		lifecycle: userLifecycle,
		call:      u.store.clients.User.Profile,
		fulfilled: func(st *State, p services.ProfilePayload) {
			st.User.Profile = &p.User
			st.User.Preferences = p.Preferences
			st.User.Settings = p.Settings
		},
	})
	return err
}

// UpdateProfile validates update and saves it.
func (u *UserSlice) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if err := checkForm(u.store.validate, "profile", update); err != nil {
		return err
	}

	_, err := run(ctx, u.store, request[models.UserProfile]{
		slice:     "user",
		op:        "update_profile",
		lifecycle: userLifecycle,
		call: func(ctx context.Context) services.Result[models.UserProfile] {
			return u.store.clients.User.UpdateProfile(ctx, update)
		},
		fulfilled: func(st *State, p models.UserProfile) { st.User.Profile = &p },
	})
	return err
}

func (u *UserSlice) UpdatePreferences(ctx context.Context, prefs models.Preferences) error {
	_, err := run(ctx, u.store, request[models.Preferences]{
		slice:     "user",
		op:        "update_preferences",
		lifecycle: userLifecycle,
		call: func(ctx context.Context) services.Result[models.Preferences] {
			return u.store.clients.User.UpdatePreferences(ctx, prefs)
		},
		fulfilled: func(st *State, p models.Preferences) { st.User.Preferences = p },
	})
	return err
}

func (u *UserSlice) UpdateSettings(ctx context.Context, settings models.Settings) error {
	_, err := run(ctx, u.store, request[models.Settings]{
		slice:     "user",
		op:        "update_settings",
		lifecycle: userLifecycle,
		call: func(ctx context.Context) services.Result[models.Settings] {
			return u.store.clients.User.UpdateSettings(ctx, settings)
		},
		fulfilled: func(st *State, s models.Settings) { st.User.Settings = s },
	})
	return err
}

func (u *UserSlice) AddRecentlyViewed(item models.MediaItem) {
	u.store.commit(func(st *State) { st.User.Activity = addRecentlyViewed(st.User.Activity, item) })
}

func (u *UserSlice) ClearRecentlyViewed() {
	u.store.commit(func(st *State) { st.User.Activity.RecentlyViewed = []models.MediaItem{} })
}

func (u *UserSlice) AddFavorite(item models.MediaItem) {
	u.store.commit(func(st *State) { st.User.Activity = addFavorite(st.User.Activity, item) })
}

func (u *UserSlice) RemoveFavorite(id int) {
	u.store.commit(func(st *State) { st.User.Activity = removeFavorite(st.User.Activity, id) })
}

// SetRating records value for the title; the last rating for a media id wins.
func (u *UserSlice) SetRating(mediaID int, t models.MediaType, value float64) {
	r := models.Rating{MediaID: mediaID, MediaType: t, Value: value, RatedAt: u.store.clock()}
	u.store.commit(func(st *State) { st.User.Activity = setRating(st.User.Activity, r) })
}

func (u *UserSlice) RemoveRating(mediaID int) {
	u.store.commit(func(st *State) { st.User.Activity = removeRating(st.User.Activity, mediaID) })
}

// SetPreferences replaces preferences locally without saving them.
func (u *UserSlice) SetPreferences(prefs models.Preferences) {
	u.store.commit(func(st *State) { st.User.Preferences = prefs })
}

func (u *UserSlice) ClearError() {
	u.store.commit(func(st *State) { st.User.Error = "" })
}

func (u *UserSlice) Reset() {
	u.store.commit(func(st *State) { st.User = initialUser() })
}
