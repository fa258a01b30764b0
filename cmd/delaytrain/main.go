package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MaghsoodSalimi/train-delay-simulator/internal/analytics"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/cmdlog"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/config"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/metrics"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/model"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/pipeline"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/predict"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/store/raildb"
	"github.com/MaghsoodSalimi/train-delay-simulator/internal/theme"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "train":
		cmdTrain()
	case "predict":
		cmdPredict()
	case "profile":
		cmdProfile()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: delaytrain <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init     Create a config file at ./delaytrain.yaml")
	fmt.Println("  train    Train both models and persist the better one")
	fmt.Println("  predict  Predict delay for an origin/destination/hour")
	fmt.Println("  profile  Show mean historical delay per hour of day")
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./delaytrain.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdTrain() {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "./delaytrain.yaml", "config path")
	seed := fs.Int64("seed", -1, "override the configured random seed")
	_ = fs.Parse(os.Args[2:])
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if *seed >= 0 {
		cfg.Training.Seed = *seed
	}
	metrics.StartServer(cfg.Metrics.Addr)
	err = cmdlog.Run("train", func() error {
		meta, err := pipeline.Run(context.Background(), cfg)
		if err != nil {
			return err
		}
		fmt.Printf("selected %s  rmse=%.3f mae=%.3f r2=%.3f\n",
			meta.ModelType, meta.Metrics.RMSE, meta.Metrics.MAE, meta.Metrics.R2)
		fmt.Println("artifacts:", cfg.Artifacts.Dir)
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdPredict() {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	cfgPath := fs.String("config", "./delaytrain.yaml", "config path")
	dir := fs.String("artifacts", "", "artifact directory (default from config)")
	origin := fs.String("origin", "", "origin station code")
	dest := fs.String("dest", "", "destination station code")
	hour := fs.Int("hour", 8, "hour of day [0,23]")
	_ = fs.Parse(os.Args[2:])
	if *origin == "" || *dest == "" {
		fmt.Println("error: -origin and -dest are required")
		os.Exit(1)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if *dir == "" {
		*dir = cfg.Artifacts.Dir
	}
	err = cmdlog.Run("predict", func() error {
		p, err := predict.Load(*dir)
		if err != nil {
			return err
		}
		from, to, err := lookupStations(cfg, *origin, *dest)
		if err != nil {
			return err
		}
		delay, err := p.Delay(from, to, *hour)
		if errors.Is(err, predict.ErrNoRouteData) {
			fmt.Printf("no data found for route %s\n", model.RouteKey(*origin, *dest))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s @ %02d:00  predicted delay %.1f min (%s)\n",
			model.RouteKey(*origin, *dest), *hour, delay, p.Metadata().ModelType)
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdProfile() {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	cfgPath := fs.String("config", "./delaytrain.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	err = cmdlog.Run("profile", func() error {
		db, err := raildb.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		deps, err := db.LoadDepartures(context.Background())
		if err != nil {
			return err
		}
		buckets := analytics.HourlyDelay(deps)
		for _, h := range analytics.SortedHours(buckets) {
			b := buckets[h]
			fmt.Printf("%02d:00  mean delay %5.1f min  (%d departures)\n", h, b.MeanDelay, b.Count)
		}
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func lookupStations(cfg config.Config, origin, dest string) (model.Station, model.Station, error) {
	var from, to model.Station
	db, err := raildb.Open(cfg.Database)
	if err != nil {
		return from, to, err
	}
	defer db.Close()
	ctx := context.Background()
	from, err = db.LoadStation(ctx, model.NormalizeCode(origin))
	if err != nil {
		return from, to, err
	}
	to, err = db.LoadStation(ctx, model.NormalizeCode(dest))
	return from, to, err
}
