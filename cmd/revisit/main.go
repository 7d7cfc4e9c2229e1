package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/seanharte/revisit/internal/attrstore"
	"github.com/seanharte/revisit/internal/config"
	"github.com/seanharte/revisit/internal/content"
	"github.com/seanharte/revisit/internal/dashboard"
	"github.com/seanharte/revisit/internal/itemstore"
	"github.com/seanharte/revisit/internal/registry"
	"github.com/seanharte/revisit/internal/session"
	"github.com/seanharte/revisit/internal/settings"
)

func main() {
	flags := pflag.NewFlagSet("revisit", pflag.ExitOnError)
	configFile := flags.String("config", "", "Path to a YAML config file")
	flags.String("db", "revisit.db", "Path to the SQLite database file")
	flags.String("log_level", "info", "Log level (debug, info, warn, error)")
	review := flags.Bool("review", false, "Start a review session instead of showing the dashboard")
	category := flags.String("category", "", "Limit the review session to one category name")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setLogLevel(cfg.LogLevel)

	store, err := attrstore.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	settingsStore, err := settings.NewSQLite(store.DB())
	if err != nil {
		log.Fatalf("Failed to open settings: %v", err)
	}

	items := itemstore.New(store, nil)
	reg := registry.New(settingsStore, items)

	ctx := context.Background()
	if *review {
		if err := runReview(ctx, items, reg, *category); err != nil {
			log.Fatalf("Review session failed: %v", err)
		}
		return
	}
	if err := printDashboard(ctx, items, reg); err != nil {
		log.Fatalf("Failed to build dashboard: %v", err)
	}
}

func setLogLevel(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(l)
}

func printDashboard(ctx context.Context, items *itemstore.Store, reg *registry.Registry) error {
	agg := dashboard.New(items, reg)
	overview, err := agg.Overview(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("%-20s %4d due / %d\n", overview.All.Name, overview.All.Due, overview.All.Total)
	for _, row := range overview.Categories {
		fmt.Printf("%-20s %4d due / %d\n", row.Name, row.Due, row.Total)
	}
	return nil
}

func runReview(ctx context.Context, items *itemstore.Store, reg *registry.Registry, categoryName string) error {
	scope := session.Scope{}
	if categoryName != "" {
		categories, err := reg.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range categories {
			if strings.EqualFold(c.Name, categoryName) {
				scope.CategoryID = c.ID
				break
			}
		}
		if scope.CategoryID == "" {
			return fmt.Errorf("unknown category %q", categoryName)
		}
	}

	mgr := session.NewManager(items, content.TextProvider{}, nil)
	s, err := mgr.Start(ctx, scope)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		card, err := s.Next(ctx)
		if err != nil {
			return err
		}
		if card == nil {
			fmt.Println("Nothing left to review :)")
			return nil
		}

		typed := ""
		if !card.AutoReveal {
			fmt.Printf("\nQ: %s\n", card.Question)
			fmt.Print("[enter] reveal, [s]kip, [d]efer, [q]uit > ")
			if !in.Scan() {
				return nil
			}
			switch strings.TrimSpace(in.Text()) {
			case "s":
				if err := s.Skip(); err != nil {
					return err
				}
				continue
			case "d":
				if err := s.Defer(); err != nil {
					return err
				}
				continue
			case "q":
				return nil
			default:
				typed = strings.TrimSpace(in.Text())
			}
		}

		answer, err := s.Reveal(ctx, typed)
		if err != nil {
			return err
		}
		if answer == nil {
			continue
		}
		fmt.Printf("A: %s\n", answer.Text)
		if answer.Checked {
			if answer.Correct {
				fmt.Println("Your answer was correct.")
			} else {
				fmt.Println("Your answer did not match.")
			}
		}

		fmt.Println("How familiar are you with the answer?")
		for i, days := range card.Previews {
			fmt.Printf("  [%2d] %dd", i, days)
			if (i+1)%4 == 0 {
				fmt.Println()
			}
		}
		fmt.Print("\nrating 0-10, [s]kip, [d]efer, [q]uit > ")
		if !in.Scan() {
			return nil
		}
		switch input := strings.TrimSpace(in.Text()); input {
		case "s":
			if err := s.Skip(); err != nil {
				return err
			}
		case "d":
			if err := s.Defer(); err != nil {
				return err
			}
		case "q":
			return nil
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 0 || n > 10 {
				fmt.Println("Please enter a rating between 0 and 10.")
				if err := s.Defer(); err != nil {
					return err
				}
				continue
			}
			if err := s.Rate(ctx, float64(n)/10); err != nil {
				return err
			}
		}
	}
}
