// Command jobmatch-check scans the database for broken marketplace
// invariants and exits with status 2 when it finds any.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/jobmatch/internal/config"
	"github.com/garnizeh/jobmatch/internal/db"
	"github.com/garnizeh/jobmatch/internal/matching"
	"github.com/garnizeh/jobmatch/internal/repository/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	svc := matching.New(sqlite.New(database, nil), nil, nil)
	violations, err := svc.CheckInvariants(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check error: %v\n", err)
		os.Exit(1)
	}
	for _, v := range violations {
		fmt.Println(v)
	}
	if len(violations) > 0 {
		os.Exit(2)
	}

	fmt.Println("No invariant violations found.")
}
