package points

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"slmap/internal/httpclient"
)

// Source fetches the raw resource holding the records.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Name identifies the resource in messages and selects the decoder.
	Name() string
}

// HTTPSource fetches the resource with a GET request.
type HTTPSource struct {
	Client *retryablehttp.Client
	URL    string
}

func (s HTTPSource) Name() string { return s.URL }

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	r, err := httpclient.Get(ctx, s.Client, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer r.Body.Close()
	if r.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetch, s.URL, r.Status)
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return b, nil
}

// FileSource reads the resource from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return b, nil
}

// NewSource returns an HTTPSource for http(s) URLs and a FileSource otherwise.
func NewSource(resource string, client *retryablehttp.Client) Source {
	lower := strings.ToLower(resource)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return HTTPSource{Client: client, URL: resource}
	}
	return FileSource{Path: resource}
}

// decoderFor selects the decoder from the resource extension. JSON is the default.
func decoderFor(name string) func([]byte) ([]Record, []Skipped, error) {
	ext := filepath.Ext(name)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		ext = path.Ext(name[:i])
	}
	if strings.EqualFold(ext, ".csv") {
		return DecodeCSV
	}
	return DecodeJSON
}
