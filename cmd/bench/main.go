// Command bench measures the fs store on a generated collection: a cold
// listing, the first live snapshot, and how long a write takes to reach a listener.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notes"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	if err := run(*count, *keep); err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}
}

func run(count int, keep bool) error {
	benchDir, err := os.MkdirTemp("", "jotter_bench_")
	if err != nil {
		return err
	}
	defer func() {
		if keep {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
			return
		}
		os.RemoveAll(benchDir)
	}()

	fmt.Printf("Generating %d notes in %s...\n", count, benchDir)
	startGen := time.Now()
	if err := generate(filepath.Join(benchDir, "notes"), count); err != nil {
		return err
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := fs.New(fs.Config{Path: benchDir, Logger: logger})
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := store.Initialize(ctx); err != nil {
		return err
	}

	startList := time.Now()
	snap, err := store.List(ctx, "notes")
	if err != nil {
		return err
	}
	listTook := time.Since(startList)

	client := notes.New(store, notes.WithLogger(logger))
	deliveries := make(chan core.Notes, 1)
	failures := make(chan error, 1)

	startSub := time.Now()
	unsubscribe := client.Subscribe(ctx,
		func(ns core.Notes) {
			// Keep only the latest mapping.
			select {
			case <-deliveries:
			default:
			}
			deliveries <- ns
		},
		func(err error) {
			select {
			case failures <- err:
			default:
			}
		},
	)
	defer unsubscribe()

	first, err := await(ctx, deliveries, failures)
	if err != nil {
		return err
	}
	subTook := time.Since(startSub)

	marker := core.NewNote(time.Now())
	marker.Title = "marker"
	marker.Content = "latency marker"
	startWrite := time.Now()
	if err := client.Save(ctx, marker); err != nil {
		return err
	}
	for {
		ns, err := await(ctx, deliveries, failures)
		if err != nil {
			return err
		}
		if _, ok := ns[marker.ID]; ok {
			break
		}
	}
	liveTook := time.Since(startWrite)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", count)
	fmt.Printf("  List:           %v (items: %d)\n", listTook, len(snap))
	fmt.Printf("  First snapshot: %v (notes: %d)\n", subTook, len(first))
	fmt.Printf("  Write to live:  %v (debounce %v)\n", liveTook, fs.DebounceInterval)
	fmt.Printf("--------------------------------------------------\n")
	return nil
}

func generate(dir string, count int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	for i := range count {
		content := fmt.Sprintf("---\ntitle: Note %d\nlastUpdated: %d\n---\nThis is benchmark note %d.", i, now-int64(i)*1000, i)
		filename := filepath.Join(dir, fmt.Sprintf("note_%d.md", i))
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func await(ctx context.Context, deliveries <-chan core.Notes, failures <-chan error) (core.Notes, error) {
	select {
	case ns := <-deliveries:
		return ns, nil
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
