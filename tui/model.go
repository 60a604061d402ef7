// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model implementation wiring the filter view, pinned set and recommender

// Package tui provides an interactive terminal UI for filtering a library and growing a pinned set.
package tui

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"playlist-explorer/config"
	"playlist-explorer/filter"
	"playlist-explorer/playlist"
	"playlist-explorer/recommend"
)

// Panel identifiers
const (
	panelTracks     = "tracks"
	panelParams     = "params"
	panelGenres     = "genres"
	panelCandidates = "candidates"
)

// Tab cycles through panels in this order
var panelOrder = []string{panelTracks, panelParams, panelGenres, panelCandidates}

// Layout constants for UI dimensions
const (
	paramPanelWidth = 45 // Left panel width for filter controls
	panelPadding    = 2  // Horizontal spacing between panels

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight      = 2 // Panel title bars
	headerHeight     = 1 // Column headers for the track table
	statusBarHeight  = 1 // Bottom status bar
	summaryHeight    = 1 // Active filter summary
	helpHeight       = 1 // Help text line
	spacingHeight    = 2 // Vertical spacing between elements
	candidatesHeight = titleHeight + maxCandidatesShown
	totalUIChrome    = titleHeight + headerHeight + statusBarHeight + summaryHeight + helpHeight + spacingHeight + candidatesHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 5

	genreRowsShown = 10 // Genre list window height
)

// Navigation and interaction constants
const (
	pageJumpSize          = 10              // Number of tracks to jump on PageUp/PageDown
	statusMessageDuration = 5 * time.Second // How long to show transient status messages
	maxUndoStackSize      = 50              // Maximum undo/redo history items
	maxCandidatesShown    = 10              // Candidate rows in the recommendations panel
)

// recommendDoneMsg carries the outcome of a recommendation run
type recommendDoneMsg struct {
	epoch  int
	result *recommend.Result
	err    error
}

// playlistReloadedMsg delivers a playlist rebuilt from a changed library file
type playlistReloadedMsg struct {
	pl *playlist.Playlist
}

// reloadErrMsg reports a failed background reload
type reloadErrMsg struct {
	err error
}

// model holds the TUI state
type model struct {
	// Dependencies
	sharedConfig ConfigProvider
	recommender  Recommender
	source       PlaylistSource
	writer       PlaylistWriter
	debugf       func(string, ...interface{})

	// Configuration
	localConfig *config.Config                      // Local config that params point to (pointer so addresses stay valid)
	ranges      *[playlist.NumFeatures]filter.Range // Range bounds the params edit
	paramMgr    *ParamManager
	configPath  string

	// Explorer state
	pl     *playlist.Playlist
	spec   *filter.Spec
	view   *filter.View
	pinned *recommend.PinnedSet

	// Recommendation lifecycle
	// Framework exception: Context stored in struct because Bubble Tea's Init/Update/View
	// pattern doesn't allow passing context through function parameters.
	ctx        context.Context    //nolint:containedctx // See framework exception above
	cancel     context.CancelFunc // Cancels in-flight runs and the reload watcher
	runEpoch   int                // Increments each run or reload to discard stale results
	running    bool
	lastResult *recommend.Result
	candidates []recommend.Candidate
	candCursor int

	// File I/O
	outputPath string
	dryRun     bool

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string
	statusMsgAge time.Time
	focusedPanel string

	// Browsing and editing
	cursorPos   int            // Cursor position in the filtered view
	viewport    viewport.Model // Viewport for scrolling the track table
	undoMgr     *UndoManager
	genreCursor int
	search      textinput.Model
	searching   bool
}

// Key bindings
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Reset key.Binding
	Quit  key.Binding
	// Track navigation
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	// Editing
	Toggle    key.Binding
	Search    key.Binding
	Sort      key.Binding
	Reverse   key.Binding
	Recommend key.Binding
	Export    key.Binding
	Undo      key.Binding
	Redo      key.Binding
	// Panel switching
	Tab key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "navigate"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "decrease param"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "increase param"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset filters"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "first track"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "last track"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space", "pin/toggle"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort column"),
	),
	Reverse: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "reverse sort"),
	),
	Recommend: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "recommend"),
	),
	Export: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "export pinned"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "redo"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paramStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedParamStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true).
				Padding(0, 1)

	playlistHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	pinnedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))
)

// Run starts the TUI over pl with injected dependencies
func Run(pl *playlist.Playlist, opts Options, deps Dependencies) error {
	m := initModel(pl, opts, deps)

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Export the pinned tracks on exit (unless dry-run mode)
	if m, ok := finalModel.(model); ok && m.pinned.Len() > 0 && m.outputPath != "" {
		if m.dryRun {
			fmt.Printf("\n--dry-run mode: %d pinned tracks not written\n", m.pinned.Len())
		} else {
			if err := m.writer.Write(m.outputPath, m.pinnedTracks()); err != nil {
				return fmt.Errorf("failed to save pinned tracks: %w", err)
			}

			fmt.Printf("\nSaved %d pinned tracks to: %s\n", m.pinned.Len(), m.outputPath)
		}
	}

	return nil
}

// initModel creates the initial model with injected dependencies
func initModel(pl *playlist.Playlist, opts Options, deps Dependencies) model {
	cfg := deps.ConfigProvider.Get()
	if opts.Accuracy > 0 {
		cfg.Recommend.Accuracy = opts.Accuracy
	}

	// Allocate on heap so parameter pointers remain valid across model copies
	localConfig := &cfg

	debugf := func(string, ...interface{}) {}
	if deps.Logger != nil {
		debugf = deps.Logger.Debugf
	}

	ctx, cancel := context.WithCancel(context.Background())

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, artist or album"
	search.CharLimit = 64

	m := model{
		sharedConfig: deps.ConfigProvider,
		recommender:  deps.Recommender,
		source:       deps.Source,
		writer:       deps.PlaylistWriter,
		debugf:       debugf,

		localConfig: localConfig,
		ranges:      &[playlist.NumFeatures]filter.Range{},
		configPath:  deps.ConfigPath,

		ctx:    ctx,
		cancel: cancel,

		outputPath: opts.OutputPath,
		dryRun:     opts.DryRun,

		viewport:     viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		focusedPanel: panelTracks,
		undoMgr:      NewUndoManager(maxUndoStackSize),
		search:       search,
	}

	m.loadPlaylist(pl)

	return m
}

// loadPlaylist installs pl with a fresh spec, view and pinned set.
// Indices from an older playlist are meaningless for the new one.
func (m *model) loadPlaylist(pl *playlist.Playlist) {
	m.pl = pl
	m.spec = filter.NewSpec(pl)
	m.view = filter.NewView(m.spec)
	m.pinned = recommend.NewPinnedSet()

	for f := range playlist.NumFeatures {
		m.ranges[f] = m.spec.Range(playlist.Feature(f))
	}

	selected := 0
	if m.paramMgr != nil {
		selected = m.paramMgr.Selected()
	}

	m.paramMgr = NewParamManager(rangeParams(m.ranges, m.spec, &m.localConfig.Recommend.Accuracy))
	m.paramMgr.SetSelected(selected)

	m.candidates = nil
	m.lastResult = nil
	m.candCursor = 0
	m.cursorPos = 0
	m.genreCursor = 0
	m.undoMgr.Clear()

	m.refreshView()
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForReload(m.ctx, m.source),
		tea.EnterAltScreen,
	)
}

// waitForReload blocks on the playlist source and delivers the next playlist as a message
func waitForReload(ctx context.Context, source PlaylistSource) tea.Cmd {
	if source == nil {
		return nil
	}

	return func() tea.Msg {
		pl, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return reloadErrMsg{err: err}
		}

		return playlistReloadedMsg{pl: pl}
	}
}

// startRecommend runs the recommender in the background and returns a command
func (m *model) startRecommend() tea.Cmd {
	if m.recommender == nil {
		m.setStatusMsg("No recommendation provider configured")

		return nil
	}

	if m.running {
		m.setStatusMsg("Recommendation run already in progress")

		return nil
	}

	if m.pinned.Len() == 0 {
		m.setStatusMsg("Pin at least one track first (space)")

		return nil
	}

	m.runEpoch++
	m.running = true

	ctx := m.ctx
	pl := m.pl
	pinned := m.pinned.Clone()
	k := m.localConfig.Recommend.Accuracy
	epoch := m.runEpoch
	recommender := m.recommender
	debugf := m.debugf

	m.setStatusMsg(fmt.Sprintf("Requesting recommendations for %d pinned tracks (accuracy %d)...", pinned.Len(), k))
	debugf("[TUI] Recommendation run %d started: pinned=%d accuracy=%d", epoch, pinned.Len(), k)

	return func() tea.Msg {
		defer func() {
			if r := recover(); r != nil {
				debugf("[PANIC] startRecommend panic: %v", r)
				debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
				panic(r) // Re-panic after logging
			}
		}()

		res, err := recommender.Run(ctx, pl, pinned, k)

		return recommendDoneMsg{epoch: epoch, result: res, err: err}
	}
}

// ========== Helper Methods ==========

// currentState captures the undoable state
func (m *model) currentState() ExplorerState {
	return ExplorerState{
		Filter:    m.spec.Snapshot(),
		Pinned:    m.pinned.Indices(),
		CursorPos: m.cursorPos,
	}
}

// restoreState applies an undo/redo state
func (m *model) restoreState(state ExplorerState) {
	m.spec.Restore(state.Filter)
	*m.ranges = state.Filter.Ranges

	m.pinned.Clear()
	for _, idx := range state.Pinned {
		m.pinned.Pin(idx)
	}

	m.cursorPos = state.CursorPos
	m.refreshView()
}

// pushUndo saves current state to undo stack
func (m *model) pushUndo() {
	m.undoMgr.Push(m.currentState())
}

// refreshView recomputes the filtered view when the spec changed and redraws the table
func (m *model) refreshView() {
	if m.view.Dirty() {
		m.view.Refresh(m.pl)
	}

	m.clampCursor()
	// Content first: SetYOffset clamps against the rows currently loaded
	m.updateViewportContent()
	m.ensureCursorVisible()
}

// clampCursor keeps the cursor inside the filtered view
func (m *model) clampCursor() {
	if m.cursorPos >= m.view.Len() {
		m.cursorPos = m.view.Len() - 1
	}

	if m.cursorPos < 0 {
		m.cursorPos = 0
	}
}

// syncRanges pushes the edited range bounds into the spec
func (m *model) syncRanges() {
	for f := range playlist.NumFeatures {
		r := m.ranges[f]
		if err := m.spec.SetFeatureRange(playlist.Feature(f), r.Min, r.Max); err != nil {
			m.debugf("[TUI] SetFeatureRange(%d) failed: %v", f, err)
		}
	}

	m.refreshView()
}

// adjustSelectedParam increases or decreases the selected parameter
func (m *model) adjustSelectedParam(increase bool) {
	param := m.paramMgr.GetSelected()
	if param == nil {
		return
	}

	before := m.currentState()

	var changed bool
	if increase {
		changed = m.paramMgr.Increase()
	} else {
		changed = m.paramMgr.Decrease()
	}

	if !changed {
		return
	}

	if param.IsInt {
		m.sharedConfig.Update(*m.localConfig)
		m.debugf("[TUI] Parameter changed - %s: %d", param.Name, *param.IntValue)

		return
	}

	m.undoMgr.Push(before)
	m.syncRanges()
	m.debugf("[TUI] Parameter changed - %s: %.2f (%d tracks match)", param.Name, *param.Value, m.view.Len())
}

// resetFilters restores the default ranges and clears genres and query
func (m *model) resetFilters() {
	m.pushUndo()
	m.spec.Reset()

	for f := range playlist.NumFeatures {
		m.ranges[f] = m.spec.Range(playlist.Feature(f))
	}

	m.search.SetValue("")
	m.refreshView()
	m.setStatusMsg(fmt.Sprintf("Filters reset (%d tracks)", m.view.Len()))
}

// trackAtCursor returns the playlist index under the cursor
func (m *model) trackAtCursor() (int, bool) {
	indices := m.view.Indices()
	if m.cursorPos < 0 || m.cursorPos >= len(indices) {
		return 0, false
	}

	return indices[m.cursorPos], true
}

// togglePinAtCursor pins or unpins the highlighted track
func (m *model) togglePinAtCursor() {
	idx, ok := m.trackAtCursor()
	if !ok {
		return
	}

	m.pushUndo()

	if m.pinned.Toggle(idx) {
		m.setStatusMsg(fmt.Sprintf("Pinned %s (%d pinned)", m.pl.Track(idx).Name, m.pinned.Len()))
	} else {
		m.setStatusMsg(fmt.Sprintf("Unpinned %s (%d pinned)", m.pl.Track(idx).Name, m.pinned.Len()))
	}

	m.updateViewportContent()
}

// toggleGenreAtCursor flips the highlighted genre in the filter
func (m *model) toggleGenreAtCursor() {
	if m.genreCursor >= len(m.pl.Genres()) {
		return
	}

	m.pushUndo()
	m.spec.ToggleGenre(m.genreCursor)
	m.refreshView()
	m.setStatusMsg(fmt.Sprintf("Genre %s toggled (%d tracks)", m.pl.Genres()[m.genreCursor], m.view.Len()))
}

// pinCandidateAtCursor pins the highlighted recommendation and removes it from the list
func (m *model) pinCandidateAtCursor() {
	if m.candCursor >= len(m.candidates) {
		return
	}

	c := m.candidates[m.candCursor]

	m.pushUndo()
	m.pinned.Pin(c.Index)
	m.candidates = append(m.candidates[:m.candCursor:m.candCursor], m.candidates[m.candCursor+1:]...)

	if m.candCursor >= len(m.candidates) && m.candCursor > 0 {
		m.candCursor--
	}

	m.setStatusMsg(fmt.Sprintf("Pinned %s (%d pinned)", m.pl.Track(c.Index).Name, m.pinned.Len()))
	m.updateViewportContent()
}

// cycleSort advances to the next sort column, or flips direction when reverse is set
func (m *model) cycleSort(reverse bool) {
	s := m.view.Sort()

	if reverse {
		s.Descending = !s.Descending
	} else {
		s.Column = (s.Column + 1) % (filter.ColumnFeature + filter.Column(playlist.NumFeatures))
	}

	m.view.SetSort(s)
	m.updateViewportContent()

	dir := "asc"
	if s.Descending {
		dir = "desc"
	}

	m.setStatusMsg(fmt.Sprintf("Sorted by %s (%s)", s.Column, dir))
}

// pinnedTracks returns the pinned tracks in pin order
func (m *model) pinnedTracks() []*playlist.Track {
	indices := m.pinned.Indices()
	tracks := make([]*playlist.Track, len(indices))

	for i, idx := range indices {
		tracks[i] = m.pl.Track(idx)
	}

	return tracks
}

// exportPinned writes the pinned tracks to the output path
func (m *model) exportPinned() {
	if m.outputPath == "" {
		m.setStatusMsg("No output path set")

		return
	}

	if m.pinned.Len() == 0 {
		m.setStatusMsg("Nothing pinned to export")

		return
	}

	if m.dryRun {
		m.setStatusMsg(fmt.Sprintf("Dry run: would write %d tracks to %s", m.pinned.Len(), m.outputPath))

		return
	}

	if err := m.writer.Write(m.outputPath, m.pinnedTracks()); err != nil {
		m.debugf("[TUI] Export failed: %v", err)
		m.setStatusMsg(fmt.Sprintf("Export failed: %v", err))

		return
	}

	m.debugf("[TUI] Exported %d tracks to %s", m.pinned.Len(), m.outputPath)
	m.setStatusMsg(fmt.Sprintf("Exported %d pinned tracks to %s", m.pinned.Len(), m.outputPath))
}

// undo restores previous state from undo stack
func (m *model) undo() {
	state, ok := m.undoMgr.Undo(m.currentState())
	if !ok {
		m.setStatusMsg("Nothing to undo")

		return
	}

	m.restoreState(state)
	m.setStatusMsg(fmt.Sprintf("Undo (Undo: %d, Redo: %d)", m.undoMgr.UndoSize(), m.undoMgr.RedoSize()))
}

// redo restores next state from redo stack
func (m *model) redo() {
	state, ok := m.undoMgr.Redo(m.currentState())
	if !ok {
		m.setStatusMsg("Nothing to redo")

		return
	}

	m.restoreState(state)
	m.setStatusMsg(fmt.Sprintf("Redo (Undo: %d, Redo: %d)", m.undoMgr.UndoSize(), m.undoMgr.RedoSize()))
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// ensureCursorVisible adjusts viewport offset to keep cursor visible with middle-of-screen scrolling
func (m *model) ensureCursorVisible() {
	vm := NewViewportManager(m.viewport.Height, m.cursorPos, m.view.Len())
	m.viewport.SetYOffset(vm.CalculateOffset())
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
