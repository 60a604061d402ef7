// ABOUTME: CLI mode implementation for non-interactive filtering and recommendations
// ABOUTME: Prints the filtered view, runs a recommendation pass for pinned IDs and exports the result

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"playlist-explorer/playlist"
	"playlist-explorer/recommend"
)

const spinnerUpdateInterval = 100 * time.Millisecond

var errUnknownTrackID = errors.New("unknown track id")

// RunCLI executes CLI mode
func RunCLI(opts RunOptions) error {
	app, err := initialize(opts, false)
	if err != nil {
		return err
	}
	defer app.Close()

	pl := app.Playlist

	view, err := buildView(pl, opts)
	if err != nil {
		return err
	}

	fmt.Printf("\n%d of %d tracks match (sorted by %s)\n\n", view.Len(), pl.Len(), view.Sort().Column)

	output := make([]*playlist.Track, 0, view.Len())
	for _, idx := range view.Indices() {
		output = append(output, pl.Track(idx))
	}

	printTracks(output)

	if len(opts.Pins) > 0 {
		runner := newRecommender(app.Config.Recommend, opts.Seed, app.Logger, app.Registry)
		if runner == nil {
			return errNoProvider
		}

		pinned, err := resolvePins(pl, opts.Pins)
		if err != nil {
			return err
		}

		accuracy := app.Config.Recommend.Accuracy
		if opts.Accuracy > 0 {
			accuracy = opts.Accuracy
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		defer signal.Stop(stop)

		go func() {
			select {
			case <-stop:
				cancel()
			case <-ctx.Done():
			}
		}()

		res, err := runWithSpinner(ctx, runner, pl, pinned, accuracy)
		if err != nil {
			return fmt.Errorf("recommendation run failed: %w", err)
		}

		printResult(pl, res)
		logMetrics(app.Logger, app.Registry)

		output = output[:0]
		for _, idx := range pinned.Indices() {
			output = append(output, pl.Track(idx))
		}

		for _, c := range res.Candidates {
			output = append(output, pl.Track(c.Index))
		}
	}

	if opts.OutputPath == "" {
		return nil
	}

	if opts.DryRun {
		fmt.Printf("\n--dry-run mode: %d tracks not written to %s\n", len(output), opts.OutputPath)

		return nil
	}

	fmt.Printf("\nWriting %d tracks to: %s\n", len(output), opts.OutputPath)

	if err := playlist.WritePlaylist(opts.OutputPath, output); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}

	fmt.Println("Done!")

	return nil
}

// resolvePins turns provider IDs into a pinned set, keeping flag order
func resolvePins(pl *playlist.Playlist, ids []string) (*recommend.PinnedSet, error) {
	pinned := recommend.NewPinnedSet()

	for _, id := range ids {
		idx, ok := pl.Lookup(strings.TrimSpace(id))
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownTrackID, id)
		}

		pinned.Pin(idx)
	}

	return pinned, nil
}

// runWithSpinner runs the recommender, animating a status line while it waits (TTY only)
func runWithSpinner(ctx context.Context, runner *recommend.Runner, pl *playlist.Playlist, pinned *recommend.PinnedSet, k int) (*recommend.Result, error) {
	type outcome struct {
		res *recommend.Result
		err error
	}

	startTime := time.Now()
	done := make(chan outcome, 1)

	go func() {
		res, err := runner.Run(ctx, pl, pinned, k)
		done <- outcome{res: res, err: err}
	}()

	fmt.Printf("\nRequesting recommendations for %d pinned tracks (accuracy %d)...\n", pinned.Len(), k)

	// Non-TTY: no spinner, avoids log spam in pipes and cron
	if !isTTY(os.Stdout) {
		out := <-done

		return out.res, out.err
	}

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerIdx := 0

	ticker := time.NewTicker(spinnerUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case out := <-done:
			fmt.Print("\r\033[K")
			fmt.Printf("Completed in %v\n", time.Since(startTime).Round(time.Millisecond))

			return out.res, out.err
		case <-ticker.C:
			fmt.Printf("\r%s %5.1fs", spinnerFrames[spinnerIdx], time.Since(startTime).Seconds())
			spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
		}
	}
}

// printTracks renders tracks as an aligned table
func printTracks(tracks []*playlist.Track) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "#\tID\tBPM\tEng\tDnc\tArtist\tTitle\tAlbum\tGenre"); err != nil {
		log.Printf("Warning: failed to write header: %v", err)
	}

	if _, err := fmt.Fprintln(w, "---\t--\t---\t---\t---\t------\t-----\t-----\t-----"); err != nil {
		log.Printf("Warning: failed to write separator: %v", err)
	}

	for i, track := range tracks {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%.0f\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(track.ID, 24),
			track.Features[playlist.Tempo],
			track.Features[playlist.Energy],
			track.Features[playlist.Danceability],
			truncate(track.Artist(), 20),
			truncate(track.Name, 30),
			truncate(track.Album, 20),
			truncate(strings.Join(track.Genres, ", "), 20),
		); err != nil {
			log.Printf("Warning: failed to write track %d: %v", i+1, err)
		}
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}
}

// printResult prints the ranked candidates and any failed batches
func printResult(pl *playlist.Playlist, res *recommend.Result) {
	fmt.Printf("\nRun %s: %d batches, %d candidates", res.RunID, len(res.Batches), len(res.Candidates))

	if res.Unknown > 0 || res.AlreadyPinned > 0 {
		fmt.Printf(" (%d unknown, %d already pinned)", res.Unknown, res.AlreadyPinned)
	}

	fmt.Println()

	for _, f := range res.Failed {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", f)
	}

	if len(res.Candidates) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\nRank\tCount\tID\tArtist\tTitle")

	for i, c := range res.Candidates {
		t := pl.Track(c.Index)
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", i+1, c.Count, truncate(t.ID, 24), truncate(t.Artist(), 20), truncate(t.Name, 30))
	}

	if err := w.Flush(); err != nil {
		log.Printf("Warning: failed to flush output: %v", err)
	}
}
