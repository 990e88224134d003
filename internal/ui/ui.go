package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
	"github.com/desertthunder/marquee/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TrendingView ViewState = iota
	SearchView
	WatchlistView
	DetailsView
)

// tabs are the views reachable with tab/shift+tab, in display order.
var tabs = []ViewState{TrendingView, SearchView, WatchlistView}

func (v ViewState) String() string {
	switch v {
	case TrendingView:
		return "trending"
	case SearchView:
		return "search"
	case WatchlistView:
		return "watchlist"
	case DetailsView:
		return "details"
	default:
		return ""
	}
}

func (v ViewState) label() string {
	switch v {
	case TrendingView:
		return "Trending"
	case SearchView:
		return "Search"
	case WatchlistView:
		return "Watchlist"
	default:
		return "Details"
	}
}

// Model represents the TUI application state.
//
// It never mutates catalog or watchlist data itself: every change goes through the store, and the model
// re-renders from the snapshot delivered by its store subscription.
type Model struct {
	ctx    context.Context
	store  *store.Store
	engine *tasks.Engine
	logger *log.Logger

	view     ViewState
	returnTo ViewState
	width    int
	height   int
	lists    [3]list.Model
	input    textinput.Model
	typing   bool

	state       store.State
	updates     chan struct{}
	unsubscribe func()

	progressChan <-chan tasks.ProgressUpdate
	prefetchDone <-chan Msg
	progress     tasks.ProgressUpdate
	loading      bool

	help help.Model
	keys keyMap
}

// NewModel creates a TUI model bound to s. A nil engine disables catalog prefetching.
func NewModel(ctx context.Context, s *store.Store, engine *tasks.Engine, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "Search movies and tv shows"
	input.CharLimit = 100

	m := &Model{
		ctx:     ctx,
		store:   s,
		engine:  engine,
		logger:  shared.WithLogger(logger, "component", "tui"),
		view:    TrendingView,
		input:   input,
		updates: make(chan struct{}, 1),
		help:    help.New(),
		keys:    newKeyMap(),
	}

	for _, v := range tabs {
		l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
		l.Title = v.label()
		l.SetShowHelp(false)
		l.SetFilteringEnabled(false)
		m.lists[v] = l
	}

	// The listener only signals; waitForState reads the newest snapshot itself.
	m.unsubscribe = s.Subscribe(func(store.State) {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	})
	m.applyState(s.Snapshot())
	return m
}

// Close removes the store subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Run starts the program on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, s *store.Store, engine *tasks.Engine, logger *log.Logger) error {
	m := NewModel(ctx, s, engine, logger)
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// Init starts the store subscription loop, the catalog prefetch and the watchlist fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.startPrefetch(), m.fetchWatchlist())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.lists {
			m.lists[i].SetSize(max(msg.Width-4, 0), max(msg.Height-10, 0))
		}
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			return m.handleInputKeys(msg)
		}
		if m.view == DetailsView {
			return m.handleDetailsKeys(msg)
		}
		return m.handleListKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStateChanged:
		st := msg.data.(store.State)
		if st.Version >= m.state.Version {
			m.applyState(st)
		}
		return m, m.waitForState()

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPrefetchComplete:
		out := msg.data.(prefetchOutcome)
		m.loading = false
		m.progressChan, m.prefetchDone = nil, nil
		switch {
		case out.err != nil:
			m.store.UI.Notify("error", fmt.Sprintf("Catalog refresh failed: %v", out.err))
		case out.result != nil && out.result.Failed > 0:
			m.store.UI.Notify("warning", fmt.Sprintf("Loaded %d collections, %d failed", out.result.Succeeded, out.result.Failed))
		}
		return m, nil

	case MsgRequestDone:
		out := msg.data.(requestOutcome)
		if out.err != nil {
			m.logger.Debug("request failed", "op", out.op, "error", out.err)
		}
		return m, nil
	}
	return m, nil
}

// applyState rebuilds the lists from a snapshot.
func (m *Model) applyState(st store.State) {
	m.state = st
	saved := func(id int) bool { return st.Watchlist.WatchlistStatus[id] }

	watchlist := make([]models.MediaItem, len(st.Watchlist.Items))
	for i, e := range st.Watchlist.Items {
		watchlist[i] = e.Media()
	}

	m.lists[TrendingView].SetItems(listItems(st.Catalog.Trending.Data, saved))
	m.lists[SearchView].SetItems(listItems(st.Search.SearchResults, saved))
	m.lists[WatchlistView].SetItems(listItems(watchlist, func(int) bool { return true }))
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.typing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		query := strings.TrimSpace(m.input.Value())
		m.typing = false
		m.input.Blur()
		if query == "" {
			return m, nil
		}
		return m, m.search(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.switchTo(m.returnTo)
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if d := m.state.Details.Details.Data; d != nil {
			return m, m.toggle(d.MediaItem)
		}
	case key.Matches(msg, m.keys.theme):
		m.store.UI.ToggleTheme()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.switchTo(tabs[(int(m.view)+1)%len(tabs)])
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.switchTo(tabs[(int(m.view)+len(tabs)-1)%len(tabs)])
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.switchTo(SearchView)
		m.typing = true
		m.input.SetValue(m.state.Search.CurrentQuery)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.selected(); ok {
			return m, m.toggle(item)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.selected(); ok {
			m.returnTo = m.view
			m.view = DetailsView
			return m, m.fetchDetails(item)
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.theme):
		m.store.UI.ToggleTheme()
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) switchTo(v ViewState) {
	m.view = v
	m.store.UI.SetActiveView(v.String())
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view == DetailsView {
		return m, nil
	}
	var cmd tea.Cmd
	m.lists[m.view], cmd = m.lists[m.view].Update(msg)
	return m, cmd
}

func (m *Model) selected() (models.MediaItem, bool) {
	if m.view == DetailsView {
		return models.MediaItem{}, false
	}
	item, ok := m.lists[m.view].SelectedItem().(mediaItem)
	return item.media, ok
}

func (m *Model) refresh() tea.Cmd {
	switch m.view {
	case TrendingView:
		return m.startPrefetch()
	case SearchView:
		if q := m.state.Search.CurrentQuery; q != "" {
			return m.search(q)
		}
	case WatchlistView:
		return m.fetchWatchlist()
	}
	return nil
}

func (m *Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		<-updates
		return stateChangedMsg(m.store.Snapshot())
	}
}

func (m *Model) startPrefetch() tea.Cmd {
	if m.engine == nil || m.loading {
		return nil
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan Msg, 1)
	m.progressChan, m.prefetchDone = progress, done
	m.loading = true

	go func() {
		result, err := m.engine.Prefetch(m.ctx, progress, tasks.PrefetchOpts{})
		close(progress)
		done <- prefetchCompleteMsg(result, err)
	}()
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.prefetchDone
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) fetchWatchlist() tea.Cmd {
	if !m.state.Auth.IsAuthenticated {
		return nil
	}
	return func() tea.Msg {
		return requestDoneMsg("fetch_watchlist", m.store.Optimistic.Fetch(m.ctx))
	}
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		return requestDoneMsg("search", m.store.Search.Search(m.ctx, query))
	}
}

func (m *Model) fetchDetails(item models.MediaItem) tea.Cmd {
	m.store.User.AddRecentlyViewed(item)
	return func() tea.Msg {
		return requestDoneMsg("details", m.store.Details.FetchAll(m.ctx, item.MediaType, item.ID))
	}
}

// toggle flips watchlist membership through the optimistic controller and reports the outcome as a notification.
func (m *Model) toggle(item models.MediaItem) tea.Cmd {
	if !m.state.Auth.IsAuthenticated {
		m.store.UI.Notify("warning", "Sign in with `marquee auth login` to edit your watchlist")
		return nil
	}
	return func() tea.Msg {
		added, err := m.store.Optimistic.Toggle(m.ctx, item)
		switch {
		case err != nil:
			m.store.UI.Notify("error", fmt.Sprintf("Could not update %s: %v", item.DisplayTitle(), err))
		case added:
			m.store.UI.Notify("success", fmt.Sprintf("Added %s to your watchlist", item.DisplayTitle()))
		default:
			m.store.UI.Notify("info", fmt.Sprintf("Removed %s from your watchlist", item.DisplayTitle()))
		}
		return requestDoneMsg("toggle", err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	styles := paletteFor(m.state.UI.Theme)

	var b strings.Builder
	b.WriteString(m.renderTabs(styles))
	b.WriteString("\n\n")

	switch m.view {
	case DetailsView:
		b.WriteString(m.renderDetails(styles))
	case SearchView:
		b.WriteString(m.renderSearch(styles))
	default:
		b.WriteString(m.renderList(styles))
	}

	if status := m.renderStatus(styles); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) renderTabs(styles *Palette) string {
	parts := make([]string, 0, len(tabs)+1)
	for _, v := range tabs {
		style := styles.tab
		if v == m.view || (m.view == DetailsView && v == m.returnTo) {
			style = styles.activeTab
		}
		parts = append(parts, style.Render(v.label()))
	}

	user := "not signed in"
	if u := m.state.Auth.User; m.state.Auth.IsAuthenticated && u != nil {
		user = "signed in as " + u.Username
	}
	parts = append(parts, styles.help.Render(user))
	return strings.Join(parts, " ")
}

func (m *Model) renderList(styles *Palette) string {
	l := m.lists[m.view]
	if len(l.Items()) > 0 {
		return l.View()
	}

	switch {
	case m.view == TrendingView && m.loading:
		return styles.warn.Render(m.progressLine())
	case m.view == WatchlistView && !m.state.Auth.IsAuthenticated:
		return styles.help.Render("Sign in to see your watchlist.")
	case m.view == WatchlistView:
		return styles.help.Render("Your watchlist is empty. Press space on any title to save it.")
	default:
		return styles.help.Render("Nothing to show yet. Press r to refresh.")
	}
}

func (m *Model) progressLine() string {
	if m.progress.Message != "" {
		return m.progress.Message
	}
	return "Loading catalog..."
}

func (m *Model) renderSearch(styles *Palette) string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch s := m.state.Search; {
	case s.Loading:
		b.WriteString(styles.warn.Render(fmt.Sprintf("Searching for %q...", s.CurrentQuery)))
	case s.HasSearched && len(s.SearchResults) == 0:
		b.WriteString(styles.help.Render(fmt.Sprintf("No results for %q", s.CurrentQuery)))
	case len(s.SearchResults) > 0:
		b.WriteString(m.lists[SearchView].View())
	case len(s.SearchHistory) > 0:
		b.WriteString(styles.help.Render("Recent: " + strings.Join(s.SearchHistory, ", ")))
	default:
		b.WriteString(styles.help.Render("Press / to search."))
	}
	return b.String()
}

func (m *Model) renderDetails(styles *Palette) string {
	d := m.state.Details
	if d.Details.Loading {
		return styles.warn.Render("Loading details...")
	}
	if d.Details.Error != "" {
		return styles.err.Render(d.Details.Error)
	}
	if d.Details.Data == nil {
		return ""
	}

	item := d.Details.Data
	var b strings.Builder
	b.WriteString(styles.title.Render(item.DisplayTitle()))
	b.WriteString("\n")
	if item.Tagline != "" {
		b.WriteString(styles.help.Render(item.Tagline))
		b.WriteString("\n")
	}

	facts := []string{string(item.MediaType), formatter.FormatDate(item.Date()), "★ " + formatter.FormatRating(item.VoteAverage)}
	if item.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", item.Runtime))
	}
	if item.NumberOfSeasons > 0 {
		facts = append(facts, fmt.Sprintf("%d seasons", item.NumberOfSeasons))
	}
	if m.state.Watchlist.WatchlistStatus[item.ID] {
		facts = append(facts, styles.ok.Render("on watchlist"))
	}
	b.WriteString(strings.Join(facts, " • "))
	b.WriteString("\n")

	if len(item.Genres) > 0 {
		names := make([]string, len(item.Genres))
		for i, g := range item.Genres {
			names[i] = g.Name
		}
		b.WriteString("Genres: " + strings.Join(names, ", ") + "\n")
	}
	if item.Overview != "" {
		b.WriteString("\n" + item.Overview + "\n")
	}

	if c := d.Credits.Data; c != nil && len(c.Cast) > 0 {
		names := make([]string, 0, len(c.Cast))
		for _, member := range c.Cast {
			names = append(names, member.Name)
		}
		b.WriteString("\nStarring: " + strings.Join(names, ", ") + "\n")
	}
	if recs := d.Recommendations.Data; len(recs) > 0 {
		titles := make([]string, 0, min(len(recs), 5))
		for _, r := range recs[:min(len(recs), 5)] {
			titles = append(titles, r.DisplayTitle())
		}
		b.WriteString("\nMore like this: " + strings.Join(titles, ", ") + "\n")
	}
	return b.String()
}

// renderStatus shows the newest notification, or the current view's request error.
func (m *Model) renderStatus(styles *Palette) string {
	if n := m.state.UI.Notifications; len(n) > 0 {
		last := n[len(n)-1]
		switch last.Level {
		case "error":
			return styles.err.Render("✗ " + last.Message)
		case "warning":
			return styles.warn.Render("! " + last.Message)
		case "success":
			return styles.ok.Render("✓ " + last.Message)
		default:
			return styles.help.Render(last.Message)
		}
	}

	var msg string
	switch m.view {
	case TrendingView:
		msg = m.state.Catalog.Trending.Error
	case SearchView:
		msg = m.state.Search.Error
	case WatchlistView:
		msg = m.state.Watchlist.Error
	}
	if msg == "" {
		return ""
	}
	return styles.err.Render("Error: " + msg)
}

func (m *Model) helpKeys() []key.Binding {
	switch {
	case m.typing:
		submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
		return []key.Binding{submit, m.keys.back}
	case m.view == DetailsView:
		return []key.Binding{m.keys.toggle, m.keys.back, m.keys.quit}
	default:
		return []key.Binding{m.keys.enter, m.keys.toggle, m.keys.search, m.keys.next, m.keys.refresh, m.keys.quit}
	}
}
