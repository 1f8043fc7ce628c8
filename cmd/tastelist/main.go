// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/tastelist"
	"github.com/poiesic/tastelist/config"
	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
	"github.com/poiesic/tastelist/store/badger"
	"github.com/poiesic/tastelist/verify"
)

func main() {
	app := &cli.App{
		Name:  "tastelist",
		Usage: "Shared restaurant boards on a path-addressed document store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Populate a database with sample boards and restaurants",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the database directory (defaults to the config file value)",
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "Scan the graph for referential-integrity violations",
				Action: verifyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the database directory (defaults to the config file value)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of boards to scan concurrently (0 = half the CPUs)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N boards",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed reads",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 100 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "repair",
						Usage: "Fix the list-shaped violations found by the scan",
					},
				},
			},
			{
				Name:   "dump",
				Usage:  "Print every document in the database as JSON",
				Action: dumpCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the database directory (defaults to the config file value)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// resolveDBPath prefers the --db flag, falling back to the config file.
func resolveDBPath(c *cli.Context) (string, *config.Config, error) {
	cfg, path, err := config.Load()
	if err != nil {
		return "", nil, fmt.Errorf("load config %s: %w", path, err)
	}
	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.Database
	}
	return dbPath, cfg, nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, cfg, err := resolveDBPath(c)
	if err != nil {
		return err
	}

	opts := []tastelist.DatabaseOption{}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		opts = append(opts, tastelist.WithDatabaseLocation(loc))
	}

	db, err := tastelist.NewDatabase(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := seedSampleData(ctx, db); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "seeded sample data into %s\n", dbPath)
	return nil
}

// seedSampleData creates two users sharing a board with two categories
// and a restaurant in each.
func seedSampleData(ctx context.Context, db *tastelist.Database) error {
	if _, err := db.Users().CreateUser(ctx, "alice", "Alice"); err != nil {
		return fmt.Errorf("create user alice: %w", err)
	}
	if _, err := db.Users().CreateUser(ctx, "bob", "Bob"); err != nil {
		return fmt.Errorf("create user bob: %w", err)
	}

	boardID := core.BoardCode("alice:manila-eats")
	if _, err := db.Boards().CreateBoard(ctx, boardID, "Manila Eats", "alice"); err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	if err := db.Boards().AddMember(ctx, boardID, "bob"); err != nil {
		return fmt.Errorf("add member: %w", err)
	}

	if _, err := db.Categories().AddCategory(ctx, boardID, "desserts", "Desserts", "sweet endings"); err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	if _, err := db.Categories().AddCategory(ctx, boardID, "fastfood", "Fast Food", "quick bites"); err != nil {
		return fmt.Errorf("add category: %w", err)
	}

	sweetSpot := &core.Restaurant{
		Name:     "The Sweet Spot",
		Rating1:  4.5,
		Rating2:  4.0,
		Rating3:  4.8,
		Notes:    "try the chocolate cake",
		Visits:   []string{"2024-12-01"},
		Location: "12 Baker St",
		Dishes:   []string{"Chocolate Cake", "Brownie Sundae"},
		Photo:    "sweet-spot.jpg",
	}
	if _, err := db.Restaurants().AddRestaurant(ctx, boardID, "desserts", core.NewID(), sweetSpot); err != nil {
		return fmt.Errorf("add restaurant: %w", err)
	}

	jollibee := &core.Restaurant{
		Name:     "Jollibee",
		Rating1:  4.0,
		Rating2:  3.5,
		Rating3:  4.2,
		Notes:    "chickenjoy",
		Visits:   []string{"2025-01-15"},
		Location: "SM North EDSA",
		Dishes:   []string{"Chickenjoy", "Jolly Spaghetti"},
		Photo:    "jollibee.jpg",
	}
	if _, err := db.Restaurants().AddRestaurant(ctx, boardID, "fastfood", core.NewID(), jollibee); err != nil {
		return fmt.Errorf("add restaurant: %w", err)
	}

	if err := db.Users().UpdateLastActive(ctx, "alice"); err != nil {
		return fmt.Errorf("update last active: %w", err)
	}

	return nil
}

func verifyCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, cfg, err := resolveDBPath(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	st := badger.NewStore(backend)
	defer st.Close()

	reportInterval := c.Int("report-interval")
	if reportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	opts := []verify.Option{
		verify.WithProgress(os.Stderr, reportInterval),
		verify.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	}
	poolSize := c.Int("pool-size")
	if poolSize == 0 {
		poolSize = cfg.PoolSize
	}
	if poolSize > 0 {
		opts = append(opts, verify.WithPoolSize(poolSize))
	}

	v, err := verify.NewVerifier(st, opts...)
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}
	defer v.Close()

	report, err := v.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "scanned %d users and %d boards\n",
		report.UsersScanned, report.BoardsScanned)
	for _, finding := range report.Findings {
		fmt.Println(finding)
	}

	if c.Bool("repair") && len(report.Findings) > 0 {
		repaired, err := v.Repair(ctx, report)
		if err != nil {
			return fmt.Errorf("repair failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "repaired %d of %d findings\n", repaired, len(report.Findings))
	}

	if len(report.Findings) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func dumpCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, _, err := resolveDBPath(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	st := badger.NewStore(backend)
	defer st.Close()

	out := store.Document{}
	for _, prefix := range []string{store.UsersPrefix, store.BoardsPrefix} {
		doc, err := st.Get(ctx, prefix)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", prefix, err)
		}
		out[prefix] = doc
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
