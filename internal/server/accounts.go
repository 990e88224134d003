package server

import (
	"cmp"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/desertthunder/marquee/internal/models"
)

var errEmailTaken = errors.New("email already registered")

type authBody struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// invalid writes a 400 naming the first failing field.
func invalid(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+strings.ToLower(verrs[0].Field()))
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body")
}

func (a *StubAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		invalid(w, err)
		return
	}
	if err := a.validate.Struct(creds); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	a.mu.Lock()
	acc, ok := a.accounts[a.emails[strings.ToLower(creds.Email)]]
	var hash string
	var profile models.UserProfile
	var active bool
	if ok {
		hash, profile, active = acc.password, acc.profile(), acc.record.Active
	}
	a.mu.Unlock()

	if !ok || !CheckPassword(creds.Password, hash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !active {
		writeError(w, http.StatusForbidden, "Account disabled")
		return
	}

	a.respondWithToken(w, http.StatusOK, profile)
}

func (a *StubAPI) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := decodeJSON(r, &reg); err != nil {
		invalid(w, err)
		return
	}
	if err := a.validate.Struct(reg); err != nil {
		invalid(w, err)
		return
	}

	acc, err := a.createAccount(reg.Username, reg.Email, reg.Password, models.RoleUser)
	if errors.Is(err, errEmailTaken) {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	a.mu.Lock()
	profile := acc.profile()
	a.mu.Unlock()
	a.respondWithToken(w, http.StatusCreated, profile)
}

func (a *StubAPI) respondWithToken(w http.ResponseWriter, status int, user models.UserProfile) {
	token, err := a.issuer.Issue(user.ID, user.Role)
	if err != nil {
		a.logger.Error("token issue failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, status, authBody{Token: token, User: user})
}

// withAccount runs fn with the caller's account under the lock, answering 401 when the account is gone.
func (a *StubAPI) withAccount(w http.ResponseWriter, r *http.Request, fn func(*account)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.current(r)
	if !ok || !acc.record.Active {
		writeError(w, http.StatusUnauthorized, "Account not found")
		return
	}
	fn(acc)
}

func (a *StubAPI) authProfile(w http.ResponseWriter, r *http.Request) {
	a.withAccount(w, r, func(acc *account) {
		writeJSON(w, http.StatusOK, map[string]models.UserProfile{"user": acc.profile()})
	})
}

func parseTarget(r *http.Request) (models.MediaType, int, bool) {
	t := models.MediaType(r.PathValue("type"))
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || !t.Valid() {
		return "", 0, false
	}
	return t, id, true
}

func (a *StubAPI) listWatchlist(w http.ResponseWriter, r *http.Request) {
	a.withAccount(w, r, func(acc *account) {
		writeJSON(w, http.StatusOK, map[string][]models.WatchlistEntry{"watchlist": slices.Clone(acc.watchlist)})
	})
}

func (a *StubAPI) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	var entry models.WatchlistEntry
	if err := decodeJSON(r, &entry); err != nil {
		invalid(w, err)
		return
	}
	if entry.ID <= 0 || !entry.MediaType.Valid() {
		writeError(w, http.StatusBadRequest, "Media id and type are required")
		return
	}

	a.withAccount(w, r, func(acc *account) {
		if slices.ContainsFunc(acc.watchlist, func(e models.WatchlistEntry) bool { return e.Matches(entry.ID, entry.MediaType) }) {
			writeError(w, http.StatusConflict, "Already in watchlist")
			return
		}
		entry.AddedAt = a.now().UTC()
		acc.watchlist = append(acc.watchlist, entry)
		writeJSON(w, http.StatusCreated, map[string]models.WatchlistEntry{"item": entry})
	})
}

func (a *StubAPI) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	t, id, ok := parseTarget(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid media id or type")
		return
	}

	a.withAccount(w, r, func(acc *account) {
		i := slices.IndexFunc(acc.watchlist, func(e models.WatchlistEntry) bool { return e.Matches(id, t) })
		if i < 0 {
			writeError(w, http.StatusNotFound, "Item not found in watchlist")
			return
		}
		acc.watchlist = slices.Delete(acc.watchlist, i, i+1)
		writeJSON(w, http.StatusOK, messageBody{Message: "Removed from watchlist"})
	})
}

func (a *StubAPI) clearWatchlist(w http.ResponseWriter, r *http.Request) {
	a.withAccount(w, r, func(acc *account) {
		acc.watchlist = []models.WatchlistEntry{}
		writeJSON(w, http.StatusOK, messageBody{Message: "Watchlist cleared"})
	})
}

func (a *StubAPI) watchlistStatus(w http.ResponseWriter, r *http.Request) {
	t, id, ok := parseTarget(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid media id or type")
		return
	}

	a.withAccount(w, r, func(acc *account) {
		in := slices.ContainsFunc(acc.watchlist, func(e models.WatchlistEntry) bool { return e.Matches(id, t) })
		writeJSON(w, http.StatusOK, map[string]bool{"inWatchlist": in})
	})
}

type profileBody struct {
	User        models.UserProfile `json:"user"`
	Preferences models.Preferences `json:"preferences"`
	Settings    models.Settings    `json:"settings"`
}

func (a *StubAPI) userProfile(w http.ResponseWriter, r *http.Request) {
	a.withAccount(w, r, func(acc *account) {
		writeJSON(w, http.StatusOK, profileBody{User: acc.profile(), Preferences: acc.preferences, Settings: acc.settings})
	})
}

func (a *StubAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		invalid(w, err)
		return
	}
	if err := a.validate.Struct(update); err != nil {
		invalid(w, err)
		return
	}

	a.withAccount(w, r, func(acc *account) {
		if update.Email != "" && !strings.EqualFold(update.Email, acc.record.Email) {
			key := strings.ToLower(update.Email)
			if _, taken := a.emails[key]; taken {
				writeError(w, http.StatusConflict, "Email already registered")
				return
			}
			delete(a.emails, strings.ToLower(acc.record.Email))
			a.emails[key] = acc.record.RecordID
			acc.record.Email = update.Email
		}
		if update.Username != "" {
			acc.record.Username = update.Username
		}
		if update.Avatar != "" {
			acc.avatar = update.Avatar
		}
		writeJSON(w, http.StatusOK, map[string]models.UserProfile{"user": acc.profile()})
	})
}

func (a *StubAPI) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := decodeJSON(r, &prefs); err != nil {
		invalid(w, err)
		return
	}

	a.withAccount(w, r, func(acc *account) {
		acc.preferences = prefs
		writeJSON(w, http.StatusOK, map[string]models.Preferences{"preferences": prefs})
	})
}

func (a *StubAPI) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := decodeJSON(r, &settings); err != nil {
		invalid(w, err)
		return
	}

	a.withAccount(w, r, func(acc *account) {
		acc.settings = settings
		writeJSON(w, http.StatusOK, map[string]models.Settings{"settings": settings})
	})
}

// matchesFilters applies the admin list filters; query matches username or email, case-insensitively.
func matchesFilters(rec models.UserRecord, f models.UserFilters) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(rec.Username), q) && !strings.Contains(strings.ToLower(rec.Email), q) {
			return false
		}
	}
	if f.Role != "" && rec.Role != f.Role {
		return false
	}
	switch f.Status {
	case "active":
		return rec.Active
	case "inactive":
		return !rec.Active
	}
	return true
}

func (a *StubAPI) adminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := models.UserFilters{Query: q.Get("query"), Role: q.Get("role"), Status: q.Get("status")}

	a.mu.Lock()
	users := []models.UserRecord{}
	for _, acc := range a.accounts {
		if matchesFilters(acc.record, filters) {
			users = append(users, acc.record)
		}
	}
	a.mu.Unlock()

	slices.SortFunc(users, func(x, y models.UserRecord) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(x.Username, y.Username)
	})
	writeJSON(w, http.StatusOK, map[string][]models.UserRecord{"users": users})
}

func (a *StubAPI) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		invalid(w, err)
		return
	}
	if patch.Role != nil && *patch.Role != models.RoleUser && *patch.Role != models.RoleAdmin {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.accounts[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if patch.Email != nil && !strings.EqualFold(*patch.Email, acc.record.Email) {
		key := strings.ToLower(*patch.Email)
		if _, taken := a.emails[key]; taken {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		delete(a.emails, strings.ToLower(acc.record.Email))
		a.emails[key] = acc.record.RecordID
	}
	acc.record = patch.Apply(acc.record)
	writeJSON(w, http.StatusOK, map[string]models.UserRecord{"user": acc.record})
}

func (a *StubAPI) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if claims, _ := ClaimsFrom(r.Context()); claims != nil && claims.UserID == id {
		writeError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.accounts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	delete(a.emails, strings.ToLower(acc.record.Email))
	delete(a.accounts, id)
	writeJSON(w, http.StatusOK, messageBody{Message: "User deleted"})
}

func (a *StubAPI) adminStats(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	weekAgo := a.now().Add(-7 * 24 * time.Hour)
	var stats models.DashboardStats
	for _, acc := range a.accounts {
		stats.TotalUsers++
		if acc.record.Active {
			stats.ActiveUsers++
		}
		if acc.record.Role == models.RoleAdmin {
			stats.AdminUsers++
		}
		if acc.record.CreatedAt.After(weekAgo) {
			stats.NewUsersThisWeek++
		}
		stats.TotalWatchlistItems += len(acc.watchlist)
	}
	writeJSON(w, http.StatusOK, map[string]models.DashboardStats{"stats": stats})
}
