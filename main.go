// ABOUTME: Entry point for playlist-explorer application
// ABOUTME: Handles command-line parsing, profiling, and routing to CLI or TUI modes

// Package main provides the entry point for playlist-explorer, a library filter and recommendation explorer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
)

func main() {
	os.Exit(run())
}

func run() int {
	var genres, ranges, pins stringList

	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	visual := flag.Bool("visual", false, "run in visual/interactive mode")
	debug := flag.Bool("debug", false, "enable debug logging to "+debugLogFile)
	dryRun := flag.Bool("dry-run", false, "preview results without writing the output playlist")
	output := flag.String("output", "", "write the resulting tracks to this M3U8 file")
	query := flag.String("query", "", "only tracks whose name, artist or album contains this text")
	sortBy := flag.String("sort", "", "sort column: index, name, artist, album or a feature (prefix - for descending)")
	accuracy := flag.Int("accuracy", 0, "seed tracks per recommendation request, 1-5 (default from config)")
	seed := flag.Uint64("seed", 0, "random seed for batch sampling (0 = time based)")
	flag.Var(&genres, "genre", "require this genre (repeatable, any match)")
	flag.Var(&ranges, "range", "feature range as name=min:max, either bound may be empty (repeatable)")
	flag.Var(&pins, "pin", "pin a track by ID and request recommendations (repeatable)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: playlist-explorer [flags] <library.json|playlist.m3u8>")
		fmt.Println("Example: playlist-explorer -range energy=0.6: -genre techno -pin 4uLU6hMCjMI75M1A2tKUQC library.json")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	opts := RunOptions{
		LibraryPath: args[0],
		DryRun:      *dryRun,
		OutputPath:  *output,
		DebugLog:    *debug,
		Query:       *query,
		Genres:      genres,
		Ranges:      ranges,
		Sort:        *sortBy,
		Pins:        pins,
		Accuracy:    *accuracy,
		Seed:        *seed,
	}

	if *visual {
		if err := RunTUI(opts); err != nil {
			log.Printf("TUI error: %v", err)

			return 1
		}

		return 0
	}

	if err := RunCLI(opts); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
