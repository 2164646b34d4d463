// Slmap shows Second Life points of interest on a static map in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"slmap/internal/config"
	"slmap/internal/geom"
	"slmap/internal/httpclient"
	"slmap/internal/points"
	"slmap/internal/regions"
	"slmap/internal/tui"
)

const appName = "slmap"

// defined flags
var (
	levelFlag    logLevelFlag
	configFlag   = flag.String("config", "", "YAML configuration file")
	resourceFlag = flag.String("resource", "", "Marker resource as file path or URL (overrides config)")
	imageFlag    = flag.String("image", "", "Background image (overrides config)")
	logFileFlag  = flag.Bool("logfile", true, "Write logs to a file instead of the console")
	dumpFlag     = flag.Bool("dump", false, "Print the placed markers and exit")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	slog.SetLogLoggerLevel(levelFlag.value)
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", appName, err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *resourceFlag != "" {
		cfg.Resource = *resourceFlag
	}
	if *imageFlag != "" {
		cfg.Image.Path = *imageFlag
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return err
	}
	if *logFileFlag && !*dumpFlag {
		log.SetOutput(&lumberjack.Logger{
			Filename:   filepath.Join(dir, appName+".log"),
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}
	proj, err := geom.NewProjection(cfg.Frame())
	if err != nil {
		return err
	}
	client := httpclient.New(httpclient.Options{RetryMax: cfg.HTTP.RetryMax, Timeout: cfg.HTTP.Timeout})
	loader := points.NewLoader(proj, points.NewSource(cfg.Resource, client))
	if *dumpFlag {
		return runDump(context.Background(), os.Stdout, loader)
	}

	cache, err := regions.OpenCache(filepath.Join(dir, "regions"))
	if err != nil {
		return err
	}
	defer cache.Close()
	m, err := tui.New(tui.Options{
		Config:   cfg,
		Loader:   loader,
		Resolver: regions.NewResolver(client, cache),
	})
	if err != nil {
		return err
	}
	slog.Info("Starting", "resource", cfg.Resource, "image", cfg.Image.Path)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return err
	}
	return nil
}

// cacheDir returns the configured cache directory or the user cache directory, creating it.
func cacheDir(cfg config.Config) (string, error) {
	dir := cfg.CacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, appName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	return dir, nil
}
