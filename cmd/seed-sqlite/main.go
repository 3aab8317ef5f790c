// seed-sqlite copies a students.json snapshot into a SQLite database file
// so the dashboard can be started with source.kind: sqlite.
//
//	go run ./cmd/seed-sqlite --from=data/students.json --to=storage/students.db
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/aanand-mishra/students-dashboard/internal/storage/jsonfile"
	"github.com/aanand-mishra/students-dashboard/internal/storage/sqlite"
)

func main() {
	from := flag.String("from", "data/students.json", "JSON snapshot to read")
	to := flag.String("to", "", "SQLite database file to write")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *to == "" {
		log.Error("--to is required")
		os.Exit(2)
	}

	ctx := context.Background()

	students, err := jsonfile.New(*from).Fetch(ctx)
	if err != nil {
		log.Error("failed to read snapshot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqlite.New(*to)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	for _, s := range students {
		if _, err := db.Insert(ctx, s); err != nil {
			log.Error("failed to insert student",
				slog.Int64("id", s.ID), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	log.Info("seeded database", slog.String("path", *to), slog.Int("count", len(students)))
}
