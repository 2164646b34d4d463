// Slurlconv turns a station list into the marker resource of slmap.
//
// A station list holds three non-blank lines per station: the name, its SLURL and a
// marker tag. Region names are resolved to grid coordinates through the Second Life
// CAP API and cached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"slmap/internal/httpclient"
	"slmap/internal/regions"
	"slmap/internal/stations"
)

// defined flags
var (
	levelFlag  logLevelFlag
	inFlag     = flag.String("in", "stations.txt", "Station list to read")
	outFlag    = flag.String("out", "slurls.json", "File to write, - for stdout")
	formatFlag = flag.String("format", formatJSON, "Output format: json, geojson or stations")
	cacheFlag  = flag.String("cache", "", "Region cache directory (default: user cache directory)")
	retryFlag  = flag.Int("retry", 3, "Maximum retries per region lookup")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	slog.SetLogLoggerLevel(levelFlag.value)
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "slurlconv: %s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	f, err := os.Open(*inFlag)
	if err != nil {
		return err
	}
	defer f.Close()
	entries, err := stations.Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", *inFlag, err)
	}
	dir := *cacheFlag
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(base, "slmap", "regions")
	}
	cache, err := regions.OpenCache(dir)
	if err != nil {
		return err
	}
	defer cache.Close()
	client := httpclient.New(httpclient.Options{RetryMax: *retryFlag, Timeout: 10 * time.Second})
	records, err := convert(ctx, regions.NewResolver(client, cache), entries)
	if err != nil {
		return err
	}
	data, err := encode(*formatFlag, records)
	if err != nil {
		return err
	}
	if *outFlag == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*outFlag, data, 0o644); err != nil {
		return err
	}
	slog.Info("Stations converted", "count", len(records), "out", *outFlag, "format", *formatFlag)
	return nil
}
