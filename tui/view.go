// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"playlist-explorer/playlist"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] View panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Saving config and exiting...\n"
	}

	leftPanel := m.renderParameters() + "\n" + m.renderGenres()
	rightPanel := m.renderTracks() + "\n" + m.renderCandidates()

	// Leave room for status bar, summary and help
	panelHeight := m.height - (statusBarHeight + summaryHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(paramPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := m.width - paramPanelWidth - panelPadding
	if rightPanelWidth < minViewportWidth*2 {
		rightPanelWidth = minViewportWidth * 2 // Minimum width for readable track display
	}

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(leftPanel),
		rightPanelStyle.Render(rightPanel),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderSummary() + "\n" + m.renderHelp()
}

// panelTitle decorates a title when its panel has focus
func (m model) panelTitle(title, panel string) string {
	if m.focusedPanel == panel {
		title = "► " + title + " [FOCUSED]"
	}

	return titleStyle.Render(title) + "\n\n"
}

// renderParameters renders the filter range controls
func (m model) renderParameters() string {
	var s strings.Builder

	s.WriteString(m.panelTitle("Filters", panelParams))

	for i, param := range m.paramMgr.All() {
		var value string

		switch {
		case param.IsInt && param.IntValue != nil:
			value = strconv.Itoa(*param.IntValue)
		case !param.IsInt && param.Value != nil:
			value = formatBound(*param.Value)
		default:
			value = "N/A"
		}

		// Fixed width formatting to prevent column misalignment
		prefix := "  "
		if i == m.paramMgr.Selected() {
			prefix = "► "
		}

		line := fmt.Sprintf("%s%-25s %8s", prefix, param.Name, value)

		if i == m.paramMgr.Selected() && m.focusedPanel == panelParams {
			s.WriteString(selectedParamStyle.Render(line) + "\n")
		} else {
			s.WriteString(paramStyle.Render(line) + "\n")
		}
	}

	return s.String()
}

// formatBound prints unit-range values with two decimals and larger ones whole
func formatBound(v float64) string {
	if v > 1 || v < -1 {
		return fmt.Sprintf("%.0f", v)
	}

	return fmt.Sprintf("%.2f", v)
}

// renderGenres renders a window of the genre list around the genre cursor
func (m model) renderGenres() string {
	var s strings.Builder

	genres := m.pl.Genres()
	s.WriteString(m.panelTitle(fmt.Sprintf("Genres (%d)", len(genres)), panelGenres))

	if len(genres) == 0 {
		s.WriteString(helpStyle.Render("  no genre tags") + "\n")

		return s.String()
	}

	start := m.genreCursor - genreRowsShown/2
	if start > len(genres)-genreRowsShown {
		start = len(genres) - genreRowsShown
	}

	if start < 0 {
		start = 0
	}

	mask := m.spec.Genres()

	for i := start; i < len(genres) && i < start+genreRowsShown; i++ {
		check := "[ ]"
		if i < mask.Size() && mask.Get(i) {
			check = "[x]"
		}

		line := fmt.Sprintf("%s %s", check, truncate(genres[i], paramPanelWidth-8))

		if i == m.genreCursor && m.focusedPanel == panelGenres {
			s.WriteString(selectedParamStyle.Render(line) + "\n")
		} else {
			s.WriteString(paramStyle.Render(line) + "\n")
		}
	}

	return s.String()
}

// renderTracks renders the filtered track table with viewport scrolling
func (m model) renderTracks() string {
	var s strings.Builder

	title := fmt.Sprintf("Tracks %d/%d | pinned %d", m.view.Len(), m.pl.Len(), m.pinned.Len())
	s.WriteString(m.panelTitle(title, panelTracks))

	if m.searching {
		s.WriteString(m.search.View() + "\n")
	} else {
		header := fmt.Sprintf("%-1s %-5s %-20s %-28s %-18s %-5s %-4s %-4s",
			"", "#", "Artist", "Name", "Album", "Tempo", "Eng", "Dnc")
		s.WriteString(playlistHeaderStyle.Render(header) + "\n")
	}

	// Render viewport (content set in Update)
	s.WriteString(m.viewport.View())

	return s.String()
}

// updateViewportContent builds and sets the viewport content
// Renders every row in the view - the viewport handles scrolling
func (m *model) updateViewportContent() {
	var content strings.Builder

	for i, idx := range m.view.Indices() {
		t := m.pl.Track(idx)

		mark := " "
		if m.pinned.Contains(idx) {
			mark = "*"
		}

		line := fmt.Sprintf("%-1s %-5d %-20s %-28s %-18s %-5.0f %-4.2f %-4.2f",
			mark,
			idx+1,
			truncate(t.Artist(), 20),
			truncate(t.Name, 28),
			truncate(t.Album, 18),
			t.Features[playlist.Tempo],
			t.Features[playlist.Energy],
			t.Features[playlist.Danceability],
		)

		switch {
		case i == m.cursorPos:
			line = cursorStyle.Render(line)
		case mark == "*":
			line = pinnedStyle.Render(line)
		}

		content.WriteString(line + "\n")
	}

	m.viewport.SetContent(content.String())
}

// renderCandidates renders the latest recommendations
func (m model) renderCandidates() string {
	var s strings.Builder

	title := "Recommendations"
	if m.running {
		title += " (running...)"
	} else if m.lastResult != nil {
		title += fmt.Sprintf(" (%d)", len(m.candidates))
	}

	s.WriteString(m.panelTitle(title, panelCandidates))

	if len(m.candidates) == 0 {
		s.WriteString(helpStyle.Render("  pin tracks and press R") + "\n")

		return s.String()
	}

	start := m.candCursor - maxCandidatesShown/2
	if start > len(m.candidates)-maxCandidatesShown {
		start = len(m.candidates) - maxCandidatesShown
	}

	if start < 0 {
		start = 0
	}

	for i := start; i < len(m.candidates) && i < start+maxCandidatesShown; i++ {
		c := m.candidates[i]
		t := m.pl.Track(c.Index)

		line := fmt.Sprintf("%3dx %-20s %-28s", c.Count, truncate(t.Artist(), 20), truncate(t.Name, 28))

		if i == m.candCursor && m.focusedPanel == panelCandidates {
			line = cursorStyle.Render(line)
		}

		s.WriteString(line + "\n")
	}

	return s.String()
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	trackInfo := fmt.Sprintf("%d/%d tracks | Row %d/%d",
		m.view.Len(),
		m.pl.Len(),
		m.cursorPos+1,
		m.view.Len(),
	)

	undoInfo := fmt.Sprintf("U:%d R:%d", m.undoMgr.UndoSize(), m.undoMgr.RedoSize())

	dir := "asc"
	if m.view.Sort().Descending {
		dir = "desc"
	}

	status := fmt.Sprintf("%s | %s | Pinned: %d | Accuracy: %d | Sort: %s %s",
		trackInfo,
		undoInfo,
		m.pinned.Len(),
		m.localConfig.Recommend.Accuracy,
		m.view.Sort().Column,
		dir,
	)

	return statusStyle.Width(m.width).Render(status)
}

// renderSummary lists the constraints that narrow the view
func (m model) renderSummary() string {
	var parts []string

	for f := range playlist.NumFeatures {
		feature := playlist.Feature(f)
		r, def := m.spec.Range(feature), m.spec.DefaultRange(feature)

		if r != def {
			parts = append(parts, fmt.Sprintf("%s %s..%s", feature, formatBound(r.Min), formatBound(r.Max)))
		}
	}

	mask := m.spec.Genres()
	genres := m.pl.Genres()

	for i := mask.FirstSet(); i >= 0 && i < mask.Size(); i++ {
		if mask.Get(i) && i < len(genres) {
			parts = append(parts, "genre:"+genres[i])
		}
	}

	if q := m.spec.Query(); q != "" {
		parts = append(parts, fmt.Sprintf("%q", q))
	}

	if len(parts) == 0 {
		return helpStyle.Render(" No filters")
	}

	return helpStyle.Render(" " + strings.Join(parts, " | "))
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	return helpStyle.Render(" Tab: panel | ↑/↓: navigate | ←/→: adjust | space: pin/toggle | /: search | s/S: sort | R: recommend | w: export | u: undo | ctrl+r: redo | r: reset | q: quit")
}
