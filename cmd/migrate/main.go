// CLI tool to run pending database migrations and seed the activity catalog.
// Checks the migrations table to skip already-applied files.
// Wraps each migration + record insert in a single transaction.
// Usage: go run ./cmd/migrate [--dir db] [--skip-seed]
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lg/coach-energy-api/nutrition"
)

func main() {
	var dbDir string
	var skipSeed bool

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply pending SQL migrations and seed the activity catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && os.Getenv("DB_URL") == "" {
				return fmt.Errorf("loading .env: %w", err)
			}

			ctx := context.Background()
			conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
			if err != nil {
				return fmt.Errorf("unable to connect to database: %w", err)
			}
			defer conn.Close(ctx)

			if err := migrate(ctx, conn, dbDir); err != nil {
				return err
			}
			if skipSeed {
				return nil
			}
			return seedCatalog(ctx, conn)
		},
	}
	cmd.Flags().StringVar(&dbDir, "dir", "db", "directory holding the .sql migration files")
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not insert the default activity catalog")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, conn *pgx.Conn, dbDir string) error {
	files, err := filepath.Glob(filepath.Join(dbDir, "*.sql"))
	if err != nil || len(files) == 0 {
		return fmt.Errorf("no migration files found in %s", dbDir)
	}
	sort.Strings(files)

	// Get already-applied migrations (table may not exist yet)
	applied := make(map[string]bool)
	var exists bool
	if err := conn.QueryRow(ctx, "SELECT to_regclass('migrations') IS NOT NULL").Scan(&exists); err != nil {
		return fmt.Errorf("checking migrations table: %w", err)
	}
	if exists {
		rows, _ := conn.Query(ctx, "SELECT migration FROM migrations")
		names, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("reading applied migrations: %w", err)
		}
		for _, name := range names {
			applied[name] = true
		}
	}

	ran := 0
	for _, f := range files {
		filename := filepath.Base(f)
		if applied[filename] {
			fmt.Printf("  skip: %s\n", filename)
			continue
		}

		content, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filename, err)
		}

		err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("running %s: %w", filename, err)
			}
			desc := descriptionFromFilename(filename)
			if _, err := tx.Exec(ctx, "INSERT INTO migrations (migration, description) VALUES ($1, $2)", filename, desc); err != nil {
				return fmt.Errorf("recording %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("  applied: %s\n", filename)
		ran++
	}

	if ran == 0 {
		fmt.Println("No pending migrations.")
	} else {
		fmt.Printf("\n%d migration(s) applied.\n", ran)
	}
	return nil
}

// seedCatalog inserts the bundled activity catalog. Existing names are left
// alone so coach edits and popularity counts survive re-runs.
func seedCatalog(ctx context.Context, conn *pgx.Conn) error {
	entries := nutrition.DefaultCatalogEntries()
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO activity_catalog
				(name, category, met_low, met_moderate, met_vigorous, muscle_groups, recovery_notes)
			VALUES (@name, @category, @met_low, @met_moderate, @met_vigorous, @muscle_groups, @recovery_notes)
			ON CONFLICT (name) DO NOTHING`,
			pgx.NamedArgs{
				"name":           e.Name,
				"category":       e.Category,
				"met_low":        e.MET.Low,
				"met_moderate":   e.MET.Moderate,
				"met_vigorous":   e.MET.Vigorous,
				"muscle_groups":  e.MuscleGroups,
				"recovery_notes": e.RecoveryNotes,
			})
	}

	results := conn.SendBatch(ctx, batch)
	inserted := 0
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("seeding activity catalog: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("seeding activity catalog: %w", err)
	}

	fmt.Printf("Activity catalog: %d of %d entries inserted.\n", inserted, len(entries))
	return nil
}

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)
	name = re.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
