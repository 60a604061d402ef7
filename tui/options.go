// ABOUTME: TUI mode configuration and command-line options
// ABOUTME: Defines input parameters and injected dependencies for running the TUI

package tui

// Options contains configuration for running the TUI
type Options struct {
	OutputPath string // Path pinned tracks are exported to
	DryRun     bool   // If true, exports are logged but not written
	Accuracy   int    // Initial seed batch size; 0 uses the config value
}

// Dependencies holds all external dependencies for the TUI
// This allows for clean dependency injection and easy testing
type Dependencies struct {
	ConfigProvider ConfigProvider
	Recommender    Recommender
	Source         PlaylistSource // Optional; nil disables live reload
	PlaylistWriter PlaylistWriter
	Logger         Logger
	ConfigPath     string
}
