package store

import (
	"context"
	"slices"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// AdminState holds user management data. Records are matched by RecordID, never by catalog id.
type AdminState struct {
	Users          []models.UserRecord    `json:"users"`
	SelectedUser   *models.UserRecord     `json:"selectedUser"`
	Filters        models.UserFilters     `json:"filters"`
	DashboardStats *models.DashboardStats `json:"dashboardStats"`
	Lifecycle
}

func initialAdmin() AdminState {
	return AdminState{Users: []models.UserRecord{}, Lifecycle: Lifecycle{Status: StatusIdle}}
}

func (a AdminState) clone() AdminState {
	a.Users = slices.Clone(a.Users)
	a.SelectedUser = clonePtr(a.SelectedUser)
	a.DashboardStats = clonePtr(a.DashboardStats)
	return a
}

// replaceUser swaps in the updated record wherever its RecordID appears.
func replaceUser(a AdminState, rec models.UserRecord) AdminState {
	users := slices.Clone(a.Users)
	if i := slices.IndexFunc(users, func(u models.UserRecord) bool { return u.RecordID == rec.RecordID }); i >= 0 {
		users[i] = rec
	}
	a.Users = users
	if a.SelectedUser != nil && a.SelectedUser.RecordID == rec.RecordID {
		a.SelectedUser = &rec
	}
	return a
}

func removeUser(a AdminState, recordID string) AdminState {
	a.Users = slices.DeleteFunc(slices.Clone(a.Users), func(u models.UserRecord) bool { return u.RecordID == recordID })
	if a.SelectedUser != nil && a.SelectedUser.RecordID == recordID {
		a.SelectedUser = nil
	}
	return a
}

func selectUser(a AdminState, recordID string) AdminState {
	a.SelectedUser = nil
	if i := slices.IndexFunc(a.Users, func(u models.UserRecord) bool { return u.RecordID == recordID }); i >= 0 {
		rec := a.Users[i]
		a.SelectedUser = &rec
	}
	return a
}

// AdminSlice owns [AdminState]. Every request first checks that the session user is an admin.
type AdminSlice struct {
	store *Store
}

func adminLifecycle(st *State) *Lifecycle { return &st.Admin.Lifecycle }

// guard rejects op client-side when the session user is not an admin.
func (a *AdminSlice) guard(op string) error {
	if read(a.store, func(st *State) bool { return st.Auth.User.IsAdmin() }) {
		return nil
	}
	return deny(a.store, "admin", adminLifecycle, services.NewAuthorizationError(op))
}

// FetchUsers lists users matching the current filters.
func (a *AdminSlice) FetchUsers(ctx context.Context) error {
	if err := a.guard("admin.users"); err != nil {
		return err
	}

	filters := read(a.store, func(st *State) models.UserFilters { return st.Admin.Filters })
	_, err := run(ctx, a.store, request[[]models.UserRecord]{
		slice:     "admin",
		op:        "fetch_users",
		lifecycle: adminLifecycle,
		call: func(ctx context.Context) services.Result[[]models.UserRecord] {
			return a.store.clients.Admin.Users(ctx, filters)
		},
		fulfilled: func(st *State, users []models.UserRecord) { st.Admin.Users = users },
	})
	return err
}

// UpdateUser applies patch to the record identified by recordID.
func (a *AdminSlice) UpdateUser(ctx context.Context, recordID string, patch models.UserPatch) error {
	if err := a.guard("admin.update_user"); err != nil {
		return err
	}

	_, err := run(ctx, a.store, request[models.UserRecord]{
		slice:     "admin",
		op:        "update_user",
		lifecycle: adminLifecycle,
		call: func(ctx context.Context) services.Result[models.UserRecord] {
			return a.store.clients.Admin.UpdateUser(ctx, recordID, patch)
		},
		fulfilled: func(st *State, rec models.UserRecord) {
			if rec.RecordID == "" {
				rec.RecordID = recordID
			}
			st.Admin = replaceUser(st.Admin, rec)
		},
	})
	return err
}

func (a *AdminSlice) DeleteUser(ctx context.Context, recordID string) error {
	if err := a.guard("admin.delete_user"); err != nil {
		return err
	}

	_, err := run(ctx, a.store, request[struct{}]{
		slice:     "admin",
		op:        "delete_user",
		lifecycle: adminLifecycle,
		call: func(ctx context.Context) services.Result[struct{}] {
			return a.store.clients.Admin.DeleteUser(ctx, recordID)
		},
		fulfilled: func(st *State, _ struct{}) { st.Admin = removeUser(st.Admin, recordID) },
	})
	return err
}

func (a *AdminSlice) FetchDashboardStats(ctx context.Context) error {
	if err := a.guard("admin.stats"); err != nil {
		return err
	}

	_, err := run(ctx, a.store, request[models.DashboardStats]{
		slice:     "admin",
		op:        "fetch_dashboard_stats",
		lifecycle: adminLifecycle,
		call:      a.store.clients.Admin.DashboardStats,
		fulfilled: func(st *State, s models.DashboardStats) { st.Admin.DashboardStats = &s },
	})
	return err
}

func (a *AdminSlice) SetFilters(f models.UserFilters) {
	a.store.commit(func(st *State) { st.Admin.Filters = f })
}

// SelectUser selects a listed user by RecordID; an unknown id clears the selection.
func (a *AdminSlice) SelectUser(recordID string) {
	a.store.commit(func(st *State) { st.Admin = selectUser(st.Admin, recordID) })
}

func (a *AdminSlice) ClearSelectedUser() {
	a.store.commit(func(st *State) { st.Admin.SelectedUser = nil })
}

func (a *AdminSlice) ClearError() {
	a.store.commit(func(st *State) { st.Admin.Error = "" })
}

func (a *AdminSlice) Reset() {
	a.store.commit(func(st *State) { st.Admin = initialAdmin() })
}
