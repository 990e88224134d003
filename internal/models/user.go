package models

import "time"

// Roles understood by the client.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile is the signed-in user.
type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// IsAdmin reports whether the user may call admin-only operations.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Preferences are catalog preferences kept per user.
type Preferences struct {
	Language       string `json:"language,omitempty"`
	Region         string `json:"region,omitempty"`
	IncludeAdult   bool   `json:"includeAdult"`
	FavoriteGenres []int  `json:"favoriteGenres,omitempty"`
}

// Settings are account settings kept per user.
type Settings struct {
	EmailNotifications bool `json:"emailNotifications"`
	Autoplay           bool `json:"autoplay"`
	PrivateProfile     bool `json:"privateProfile"`
}

// Rating is a user's score for a title.
type Rating struct {
	MediaID   int       `json:"mediaId"`
	MediaType MediaType `json:"mediaType"`
	Value     float64   `json:"value"`
	RatedAt   time.Time `json:"ratedAt"`
}

// Activity is the client-side record of what the user looked at, liked and rated.
type Activity struct {
	RecentlyViewed []MediaItem `json:"recentlyViewed"`
	Favorites      []MediaItem `json:"favorites"`
	Ratings        []Rating    `json:"ratings"`
}

// UserRecord is a user as listed by the admin endpoints.
//
// RecordID is the persistent record key assigned by the server; it is distinct from catalog ids.
type UserRecord struct {
	RecordID  string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// UserPatch is a partial update applied by an admin. Nil fields are left unchanged.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// Apply returns r with the non-nil fields of p.
func (p UserPatch) Apply(r UserRecord) UserRecord {
	if p.Username != nil {
		r.Username = *p.Username
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Role != nil {
		r.Role = *p.Role
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
	return r
}

// UserFilters narrows the admin user list.
type UserFilters struct {
	Query  string `json:"query,omitempty"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"` // "active", "inactive" or empty
}

// DashboardStats are aggregate counters for the admin dashboard.
type DashboardStats struct {
	TotalUsers          int `json:"totalUsers"`
	ActiveUsers         int `json:"activeUsers"`
	AdminUsers          int `json:"adminUsers"`
	TotalWatchlistItems int `json:"totalWatchlistItems"`
	NewUsersThisWeek    int `json:"newUsersThisWeek"`
}

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is submitted by the sign-up form.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// ProfileUpdate is a partial profile edit. Empty fields are left unchanged.
type ProfileUpdate struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}
