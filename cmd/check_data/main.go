package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/forrest-fire-fund/cnx-backend/internal/config"
	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/forrest-fire-fund/cnx-backend/internal/villages"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var verbose = flag.Bool("v", false, "List villages without a matching plan")

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	cfg := config.LoadFromEnv()

	overlays, err := gis.LoadManifest(cfg.OverlayManifest)
	if err != nil {
		fatalf("manifest error: %v", err)
	}

	ds, err := gis.Loader{
		VillagesPath: cfg.VillagesPath(),
		PlansPath:    cfg.PlansPath(),
		OverlayDir:   cfg.OverlayDir,
		Overlays:     overlays,
		Log:          zap.NewNop(),
	}.Load(context.Background())
	if err != nil {
		fatalf("data error: %v", err)
	}

	snap := villages.NewSnapshot(ds)

	fmt.Printf("Villages: %d (%s)\n", len(ds.Features), cfg.VillagesPath())
	fmt.Printf("Plan entries: %d (%s)\n\n", len(ds.Plans), cfg.PlansPath())

	// Identifier quality
	noUID := 0
	seen := map[gis.UID]int{}
	for _, f := range ds.Features {
		uid, ok := f.UID()
		if !ok {
			noUID++
			continue
		}
		seen[uid]++
	}
	dupFeatures := 0
	for _, n := range seen {
		if n > 1 {
			dupFeatures++
		}
	}

	idx := villages.IndexPlans(ds.Plans)
	planNoUID, shadowed, orphaned := 0, 0, 0
	for i := range ds.Plans {
		p := &ds.Plans[i]
		switch {
		case !p.HasUID:
			planNoUID++
		case idx[p.UID] != p:
			shadowed++
		case seen[p.UID] == 0:
			orphaned++
		}
	}

	fmt.Println("=== identifiers ===")
	fmt.Printf("  features without new-uid: %d\n", noUID)
	fmt.Printf("  uids shared by several features: %d\n", dupFeatures)
	fmt.Printf("  plans without new-uid: %d\n", planNoUID)
	fmt.Printf("  plans shadowed by an earlier duplicate: %d\n", shadowed)
	fmt.Printf("  plans matching no feature: %d\n\n", orphaned)

	fmt.Println("=== overlays ===")
	keys := append([]string(nil), ds.OverlayKeys...)
	sort.Strings(keys)
	for _, k := range keys {
		state := "missing"
		if raw := ds.Overlay(k); raw != nil {
			state = fmt.Sprintf("%d bytes", len(raw))
		}
		fmt.Printf("  %-16s %s\n", k, state)
	}
	fmt.Println()

	s := snap.Stats()
	fmt.Println("=== status ===")
	fmt.Printf("  with plan: %d\n  without plan: %d\n  need volunteers: %d\n  need funding: %d\n  need help: %d\n",
		s.WithPlan, s.WithoutPlan, s.NeedVolunteers, s.NeedFunding, s.NeedHelp)

	if *verbose {
		fmt.Println()
		fmt.Println("=== villages without plan ===")
		for _, v := range snap.Villages {
			if !v.Status.HasPlan {
				fmt.Printf("  #%d %s (%s, %s)\n", v.ID, v.Name, v.Subdistrict, v.District)
			}
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
