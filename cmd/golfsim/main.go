// Command golfsim simulates shots from the command line.
//
//	golfsim -speed 150 -vla 12 -spin 2800 -axis 5 -surface firm -plot
//	golfsim -file shots.json -workers 8 -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/openrange/backend/internal/batch"
	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/shots"
)

func main() {
	var (
		speed    = flag.Float64("speed", 0, "ball speed")
		speedU   = flag.String("speed-unit", "mph", "ball speed unit: mph or mps")
		vla      = flag.Float64("vla", 0, "vertical launch angle, degrees")
		hla      = flag.Float64("hla", 0, "horizontal launch angle, degrees (positive right)")
		total    = flag.Float64("spin", -1, "total spin, rpm")
		axis     = flag.Float64("axis", 0, "spin axis, degrees (positive curves right)")
		back     = flag.Float64("back", -1, "back spin, rpm (overrides -spin/-axis)")
		side     = flag.Float64("side", 0, "side spin, rpm, used with -back")
		surface  = flag.String("surface", "", "landing surface (default from config)")
		units    = flag.String("units", "", "environment units: imperial or metric")
		unit     = flag.String("unit", "", "distance unit: yards, meters or feet")
		noMemory = flag.Bool("no-spin-memory", false, "disable impact spin memory")
		file     = flag.String("file", "", "JSON file with a list of shot requests")
		workers  = flag.Int("workers", 0, "parallel simulations for -file (default BATCH_WORKERS)")
		plot     = flag.Bool("plot", false, "plot the side view of each shot")
		asJSON   = flag.Bool("json", false, "print outcomes as JSON")
	)
	var alt, temp optionalFloat
	flag.Var(&alt, "alt", "altitude in env units (default from config)")
	flag.Var(&temp, "temp", "temperature in env units (default from config)")
	flag.Parse()
	log.SetFlags(0)

	cfg := config.Load()
	cond := cfg.Conditions()

	var reqs []shots.Request
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("read %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &reqs); err != nil {
			log.Fatalf("parse %s: %v", *file, err)
		}
	} else {
		shot := launch.Shot{Speed: *speed, SpeedUnit: launch.SpeedUnit(*speedU), VLA: *vla, HLA: *hla}
		switch {
		case *back >= 0:
			shot.BackSpin, shot.SideSpin = launch.Float(*back), launch.Float(*side)
		case *total >= 0:
			shot.TotalSpin, shot.SpinAxis = launch.Float(*total), launch.Float(*axis)
		}
		req := shots.Request{Shot: shot, Surface: *surface, Units: *units, Unit: *unit, Altitude: alt.v, Temperature: temp.v}
		reqs = []shots.Request{req}
	}
	if *noMemory {
		off := false
		for i := range reqs {
			reqs[i].SpinMemory = &off
		}
	}

	n := *workers
	if n <= 0 {
		n = cfg.BatchWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := batch.Run(ctx, reqs, n, func(_ context.Context, _ int, r shots.Request) outcome {
		plan, err := r.Resolve(cond)
		if err != nil {
			return outcome{Err: err}
		}
		out, _, err := plan.Execute()
		return outcome{Outcome: out, Err: err}
	})
	if err != nil {
		log.Printf("interrupted: %v", err)
	}

	failed := false
	for i, r := range results {
		if r.Err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "shot %d: %v\n", i+1, r.Err)
			continue
		}
		if *asJSON {
			continue
		}
		fmt.Println(renderSummary(i+1, r.Outcome))
		if *plot {
			fmt.Println(renderPlot(r.Outcome))
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		list := make([]shots.Outcome, 0, len(results))
		for _, r := range results {
			if r.Err == nil {
				if !*plot {
					r.Outcome = r.Outcome.WithoutTrajectory()
				}
				list = append(list, r.Outcome)
			}
		}
		if err := enc.Encode(list); err != nil {
			log.Fatalf("encode: %v", err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// optionalFloat is a float flag that stays nil unless set.
type optionalFloat struct{ v *float64 }

func (f *optionalFloat) String() string {
	if f.v == nil {
		return ""
	}
	return strconv.FormatFloat(*f.v, 'g', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.v = &v
	return nil
}

type outcome struct {
	Outcome shots.Outcome
	Err     error
}
