package parser

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	xzReader "github.com/xi2/xz"
)

// Stdin is the input name that reads from standard input.
const Stdin = "-"

var compressionSuffixes = []string{".gz", ".xz", ".bz2"}

// StripCompression removes a trailing compression suffix from name.
func StripCompression(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range compressionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

func newHTTPClient() *http.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.Logger = nil
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	return client.StandardClient()
}

// Open returns a reader for a local path, an http(s) URL, or standard input
// when path is empty or "-". Files ending in .gz, .xz or .bz2 are
// decompressed on the fly.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var reader io.ReadCloser
	name := path

	if path == "" || path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid input path %q: %v", ErrMalformedInput, path, err)
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		resp, err := newHTTPClient().Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch %s: %v", ErrMalformedInput, path, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: failed to fetch %s: %s", ErrMalformedInput, path, resp.Status)
		}
		reader = resp.Body
		name = u.Path
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		reader = file
	}

	decompressed, err := decompress(reader, name)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return decompressed, nil
}

func decompress(reader io.ReadCloser, name string) (io.ReadCloser, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		xzr, err := xzReader.NewReader(reader, 0)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: xzr, closers: []io.Closer{reader}}, nil
	case strings.HasSuffix(lower, ".bz2"):
		bz2r, err := bzip2.NewReader(reader, nil)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: bz2r, closers: []io.Closer{bz2r, reader}}, nil
	case strings.HasSuffix(lower, ".gz"):
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: gzr, closers: []io.Closer{gzr, reader}}, nil
	}
	return reader, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReadAll opens path and reads it fully into memory.
func ReadAll(ctx context.Context, path string) ([]byte, error) {
	reader, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrMalformedInput, displayName(path), err)
	}
	return data, nil
}

func displayName(path string) string {
	if path == "" || path == Stdin {
		return "stdin"
	}
	return path
}
