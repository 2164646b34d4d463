// Package regions resolves Second Life region names to grid coordinates.
package regions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"slmap/internal/httpclient"
)

// CapURL is the public region coordinate lookup endpoint.
const CapURL = "https://cap.secondlife.com/cap/0/d661249b-2b5a-4436-966a-3d3b8d7a574f"

const (
	requestInterval = 250 * time.Millisecond
	maxConcurrent   = 4
)

// ErrUnexpectedResponse is returned when the lookup answer can not be read.
var ErrUnexpectedResponse = errors.New("unexpected region lookup response")

// e.g. var coords = {'x' : 1018, 'y' : 912 };
var coordsRE = regexp.MustCompile(`\{\s*'x'\s*:\s*(\d+)\s*,\s*'y'\s*:\s*(\d+)\s*\}`)

// Coords is the grid cell of a region.
type Coords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Resolver looks up region coordinates, consulting the cache first.
type Resolver struct {
	baseURL string
	client  *retryablehttp.Client
	cache   Cache
	limiter *rate.Limiter
}

func NewResolver(client *retryablehttp.Client, cache Cache) *Resolver {
	return &Resolver{
		baseURL: CapURL,
		client:  client,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(requestInterval), 1),
	}
}

// Resolve returns the grid cell of region.
func (r *Resolver) Resolve(ctx context.Context, region string) (Coords, error) {
	c, found, err := r.cache.Get(region)
	if err != nil {
		slog.Warn("Region cache read failed", "region", region, "error", err)
	} else if found {
		return c, nil
	}
	c, err = r.lookup(ctx, region)
	if err != nil {
		return Coords{}, err
	}
	if err := r.cache.Put(region, c); err != nil {
		slog.Warn("Region cache write failed", "region", region, "error", err)
	}
	slog.Info("Region resolved", "region", region, "x", c.X, "y", c.Y)
	return c, nil
}

// ResolveAll resolves the distinct names in regions concurrently.
// It stops at the first failure.
func (r *Resolver) ResolveAll(ctx context.Context, regions []string) (map[string]Coords, error) {
	names := lo.Uniq(regions)
	out := make(map[string]Coords, len(names))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for _, name := range names {
		g.Go(func() error {
			c, err := r.Resolve(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			out[name] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, region string) (Coords, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Coords{}, err
	}
	q := url.Values{"var": {"coords"}, "sim_name": {region}}
	resp, err := httpclient.Get(ctx, r.client, r.baseURL+"?"+q.Encode())
	if err != nil {
		return Coords{}, fmt.Errorf("region %q: %w", region, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Coords{}, fmt.Errorf("region %q: %s", region, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coords{}, fmt.Errorf("region %q: %w", region, err)
	}
	return parseCoords(region, string(body))
}

func parseCoords(region, body string) (Coords, error) {
	m := coordsRE.FindStringSubmatch(body)
	if m == nil {
		return Coords{}, fmt.Errorf("%w for region %q", ErrUnexpectedResponse, region)
	}
	x, err := strconv.Atoi(m[1])
	if err != nil {
		return Coords{}, fmt.Errorf("%w for region %q: %w", ErrUnexpectedResponse, region, err)
	}
	y, err := strconv.Atoi(m[2])
	if err != nil {
		return Coords{}, fmt.Errorf("%w for region %q: %w", ErrUnexpectedResponse, region, err)
	}
	return Coords{X: x, Y: y}, nil
}
