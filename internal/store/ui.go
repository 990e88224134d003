package store

import (
	"slices"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// MaxNotifications caps the queue; the oldest notification is dropped first.
const MaxNotifications = 5

// Notification is a transient message for the view layer.
type Notification struct {
	ID      string    `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// UIState holds view preferences shared by every screen.
type UIState struct {
	Theme         Theme          `json:"theme"`
	ActiveView    string         `json:"activeView"`
	Notifications []Notification `json:"notifications"`
}

func initialUI() UIState {
	return UIState{Theme: ThemeDark, Notifications: []Notification{}}
}

func (u UIState) clone() UIState {
	u.Notifications = slices.Clone(u.Notifications)
	return u
}

func pushNotification(u UIState, n Notification) UIState {
	queue := append(slices.Clone(u.Notifications), n)
	if len(queue) > MaxNotifications {
		queue = queue[len(queue)-MaxNotifications:]
	}
	u.Notifications = queue
	return u
}

// UISlice owns [UIState].
type UISlice struct {
	store *Store
}

func (u *UISlice) SetTheme(t Theme) {
	u.store.commit(func(st *State) { st.UI.Theme = t })
}

func (u *UISlice) ToggleTheme() {
	u.store.commit(func(st *State) {
		if st.UI.Theme == ThemeLight {
			st.UI.Theme = ThemeDark
		} else {
			st.UI.Theme = ThemeLight
		}
	})
}

func (u *UISlice) SetActiveView(view string) {
	u.store.commit(func(st *State) { st.UI.ActiveView = view })
}

// Notify queues a message and returns its id for [UISlice.Dismiss].
func (u *UISlice) Notify(level, message string) string {
	n := Notification{ID: shared.GenerateID(), Level: level, Message: message, At: u.store.clock()}
	u.store.commit(func(st *State) { st.UI = pushNotification(st.UI, n) })
	return n.ID
}

func (u *UISlice) Dismiss(id string) {
	u.store.commit(func(st *State) {
		st.UI.Notifications = slices.DeleteFunc(slices.Clone(st.UI.Notifications), func(n Notification) bool { return n.ID == id })
	})
}

func (u *UISlice) ClearNotifications() {
	u.store.commit(func(st *State) { st.UI.Notifications = []Notification{} })
}
