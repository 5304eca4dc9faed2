// Command seed imports entries of the keyed plan dataset into the
// community plan store as pending submissions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/communityplans"
	"github.com/forrest-fire-fund/cnx-backend/internal/config"
	"github.com/forrest-fire-fund/cnx-backend/internal/db"
	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	plansPath string
	dsn       string
	dryRun    bool
	confirm   bool
)

func main() {
	_ = godotenv.Load(".env.local")
	cfg := config.LoadFromEnv()

	flag.StringVar(&plansPath, "plans", cfg.PlansPath(), "Path to the keyed plan dataset")
	flag.StringVar(&dsn, "dsn", cfg.DatabaseURL, "Postgres connection string")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate entries without writing")
	flag.BoolVar(&confirm, "confirm", false, "Required to write to the database")
	flag.Parse()

	if !dryRun && !confirm {
		fatalf("refusing to write without --confirm (or use --dry-run)")
	}

	data, err := os.ReadFile(plansPath)
	if err != nil {
		fatalf("read %s: %v", plansPath, err)
	}
	entries, err := gis.ParsePlans(data)
	if err != nil {
		fatalf("parse %s: %v", plansPath, err)
	}

	var reqs []*communityplans.CreateRequest
	skipped := 0
	for _, e := range entries {
		var req communityplans.CreateRequest
		if err := json.Unmarshal(e.Raw, &req); err != nil {
			fmt.Printf("  skip %s: %v\n", e.Key, err)
			skipped++
			continue
		}
		if req.MissingVillageInfo() {
			fmt.Printf("  skip %s: incomplete village_info\n", e.Key)
			skipped++
			continue
		}
		if details := req.Validate(); len(details) > 0 {
			fmt.Printf("  skip %s: %s\n", e.Key, details[0].Message)
			skipped++
			continue
		}
		reqs = append(reqs, &req)
	}

	fmt.Printf("Entries: %d, importable: %d, skipped: %d\n", len(entries), len(reqs), skipped)
	if dryRun {
		return
	}

	gdb, err := db.Connect(dsn, zap.NewNop())
	if err != nil {
		fatalf("connect: %v", err)
	}
	if err := communityplans.Init(gdb); err != nil {
		fatalf("init schema: %v", err)
	}
	store := communityplans.NewGormStore(gdb)

	ctx := context.Background()
	now := time.Now()
	inserted := 0
	for _, req := range reqs {
		plan := req.NewPlan(now)
		if err := store.Create(ctx, plan); err != nil {
			fmt.Printf("  insert %s: %v\n", req.VillageInfo.Name, err)
			continue
		}
		inserted++
	}
	fmt.Printf("Inserted %d plans\n", inserted)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
