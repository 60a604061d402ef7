// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"playlist-explorer/config"
	"playlist-explorer/playlist"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Right panel width: total width - left panel - padding
		viewportWidth := msg.Width - paramPanelWidth - panelPadding
		if viewportWidth < minViewportWidth {
			viewportWidth = minViewportWidth
		}

		viewportHeight := msg.Height - totalUIChrome
		if viewportHeight < minViewportHeight {
			viewportHeight = minViewportHeight
		}

		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
		m.search.Width = viewportWidth - 4

		m.viewport.YOffset = 0
		m.ensureCursorVisible()
		m.updateViewportContent()

		return m, nil

	case recommendDoneMsg:
		return m.handleRecommendDone(msg), nil

	case playlistReloadedMsg:
		m.cancelRun()
		m.loadPlaylist(msg.pl)
		m.setStatusMsg(fmt.Sprintf("Library reloaded: %d tracks, %d genres (pins cleared)", msg.pl.Len(), len(msg.pl.Genres())))
		m.debugf("[TUI] Playlist reloaded: %d tracks", msg.pl.Len())

		return m, waitForReload(m.ctx, m.source)

	case reloadErrMsg:
		m.debugf("[TUI] Reload failed: %v", msg.err)

		if errors.Is(msg.err, playlist.ErrWatcherClosed) {
			return m, nil
		}

		m.setStatusMsg(fmt.Sprintf("Reload failed: %v", msg.err))

		return m, waitForReload(m.ctx, m.source)

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m.handleQuitKey()

		case key.Matches(msg, keys.Tab):
			m.handleTabKey()

		case msg.Type == tea.KeyShiftUp:
			m.paramMgr.SelectPrevious()

		case msg.Type == tea.KeyShiftDown:
			m.paramMgr.SelectNext()

		case key.Matches(msg, keys.Up):
			m.handleUpKey()

		case key.Matches(msg, keys.Down):
			m.handleDownKey()

		case key.Matches(msg, keys.PageUp):
			m.handlePageUpKey()

		case key.Matches(msg, keys.PageDown):
			m.handlePageDownKey()

		case key.Matches(msg, keys.Home):
			m.handleHomeKey()

		case key.Matches(msg, keys.End):
			m.handleEndKey()

		case key.Matches(msg, keys.Left):
			m.handleLeftKey()

		case key.Matches(msg, keys.Right):
			m.handleRightKey()

		case key.Matches(msg, keys.Toggle):
			m.handleToggleKey()

		case key.Matches(msg, keys.Search):
			return m, m.startSearch()

		case key.Matches(msg, keys.Sort):
			m.cycleSort(false)

		case key.Matches(msg, keys.Reverse):
			m.cycleSort(true)

		case key.Matches(msg, keys.Reset):
			m.resetFilters()

		case key.Matches(msg, keys.Recommend):
			return m, m.startRecommend()

		case key.Matches(msg, keys.Export):
			m.exportPinned()

		case key.Matches(msg, keys.Undo):
			m.undo()

		case key.Matches(msg, keys.Redo):
			m.redo()
		}
	}

	return m, nil
}

// handleRecommendDone stores the result of a finished run unless it is stale
func (m model) handleRecommendDone(msg recommendDoneMsg) model {
	if msg.epoch != m.runEpoch {
		m.debugf("[TUI] Ignoring stale recommendation result: epoch %d != current %d", msg.epoch, m.runEpoch)

		return m
	}

	m.running = false

	if msg.err != nil {
		m.debugf("[TUI] Recommendation run failed: %v", msg.err)
		m.setStatusMsg(fmt.Sprintf("Recommendation failed: %v", msg.err))

		return m
	}

	res := msg.result
	m.lastResult = res
	m.candidates = res.Candidates
	m.candCursor = 0

	status := fmt.Sprintf("%d candidates from %d batches", len(res.Candidates), len(res.Batches))
	if len(res.Failed) > 0 {
		status += fmt.Sprintf(" (%d failed)", len(res.Failed))
	}

	m.setStatusMsg(status)
	m.debugf("[TUI] Recommendation run %s: %s", res.RunID, status)

	return m
}

// cancelRun abandons any in-flight recommendation run
func (m *model) cancelRun() {
	m.runEpoch++
	m.running = false
}

// startSearch focuses the query input
func (m *model) startSearch() tea.Cmd {
	m.pushUndo()
	m.searching = true
	m.search.SetValue(m.spec.Query())
	m.search.CursorEnd()

	return m.search.Focus()
}

// handleSearchKey edits the query; the view follows every keystroke
func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.setStatusMsg(fmt.Sprintf("Search %q: %d tracks", m.spec.Query(), m.view.Len()))

		return m, nil

	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.spec.SetQuery("")
		m.refreshView()

		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	m.spec.SetQuery(m.search.Value())
	m.refreshView()

	return m, cmd
}

// handleQuitKey handles the quit key press
func (m *model) handleQuitKey() (model, tea.Cmd) {
	m.quitting = true
	m.cancel()

	if err := config.SaveConfig(m.configPath, m.sharedConfig.Get()); err != nil {
		m.debugf("[TUI] Failed to save config on quit: %v", err)
		// Continue anyway - don't block quit on config save failure
	}

	return *m, tea.Quit
}

// handleTabKey cycles panel focus
func (m *model) handleTabKey() {
	for i, p := range panelOrder {
		if p == m.focusedPanel {
			m.focusedPanel = panelOrder[(i+1)%len(panelOrder)]

			return
		}
	}

	m.focusedPanel = panelTracks
}

// handleUpKey handles Up/k key press (context-aware navigation)
func (m *model) handleUpKey() {
	switch m.focusedPanel {
	case panelParams:
		m.paramMgr.SelectPrevious()
	case panelGenres:
		if m.genreCursor > 0 {
			m.genreCursor--
		}
	case panelCandidates:
		if m.candCursor > 0 {
			m.candCursor--
		}
	default:
		if m.cursorPos > 0 {
			m.cursorPos--
			m.ensureCursorVisible()
			m.updateViewportContent()
		}
	}
}

// handleDownKey handles Down/j key press (context-aware navigation)
func (m *model) handleDownKey() {
	switch m.focusedPanel {
	case panelParams:
		m.paramMgr.SelectNext()
	case panelGenres:
		if m.genreCursor < len(m.pl.Genres())-1 {
			m.genreCursor++
		}
	case panelCandidates:
		if m.candCursor < len(m.candidates)-1 {
			m.candCursor++
		}
	default:
		if m.cursorPos < m.view.Len()-1 {
			m.cursorPos++
			m.ensureCursorVisible()
			m.updateViewportContent()
		}
	}
}

// handlePageUpKey handles PageUp key press
func (m *model) handlePageUpKey() {
	m.cursorPos -= pageJumpSize
	m.clampCursor()
	m.ensureCursorVisible()
	m.updateViewportContent()
}

// handlePageDownKey handles PageDown key press
func (m *model) handlePageDownKey() {
	m.cursorPos += pageJumpSize
	m.clampCursor()
	m.ensureCursorVisible()
	m.updateViewportContent()
}

// handleHomeKey handles Home/g key press
func (m *model) handleHomeKey() {
	m.cursorPos = 0
	m.ensureCursorVisible()
	m.updateViewportContent()
}

// handleEndKey handles End/G key press
func (m *model) handleEndKey() {
	m.cursorPos = m.view.Len() - 1
	m.clampCursor()
	m.ensureCursorVisible()
	m.updateViewportContent()
}

// handleLeftKey decreases the selected parameter when params are focused
func (m *model) handleLeftKey() {
	if m.focusedPanel == panelParams {
		m.adjustSelectedParam(false)
	}
}

// handleRightKey increases the selected parameter when params are focused
func (m *model) handleRightKey() {
	if m.focusedPanel == panelParams {
		m.adjustSelectedParam(true)
	}
}

// handleToggleKey pins, toggles a genre or pins a candidate depending on focus
func (m *model) handleToggleKey() {
	switch m.focusedPanel {
	case panelGenres:
		m.toggleGenreAtCursor()
	case panelCandidates:
		m.pinCandidateAtCursor()
	case panelTracks:
		m.togglePinAtCursor()
	}
}
