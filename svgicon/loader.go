// Provides loading of the logo images referenced by a chart.
// Logos are fetched once (from HTTP, the local file system or
// data URIs), decoded into image.Image, and cached by URL,
// so that they can be consumed by painting drivers.
// See for example okchart/svgraster or okchart/svgpdf .
package svgicon

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	// registered image formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyURL is returned for an empty logo reference.
	ErrEmptyURL = errors.New("empty logo URL")
	// ErrFileAccess is returned for local files when they are not allowed.
	ErrFileAccess = errors.New("local files are not allowed")
)

// Options controls how logos are fetched.
type Options struct {
	Timeout    time.Duration `yaml:"timeout"`     // per request, 0 for no limit
	MaxBytes   int64         `yaml:"max_bytes"`   // 0 for no limit
	AllowFiles bool          `yaml:"allow_files"` // accept file:// URLs and plain paths
}

// DefaultOptions allows 10 seconds and 5MB per logo.
var DefaultOptions = Options{Timeout: 10 * time.Second, MaxBytes: 5 << 20}

// Logo is a decoded logo image.
type Logo struct {
	Image  image.Image
	Format string // as registered in the image package: "png", "webp", ...
	// Data is the raw content, which may be embedded by some drivers.
	Data []byte
}

type entry struct {
	once sync.Once
	logo *Logo
	err  error
}

// Loader fetches and caches logos.
// It is safe for concurrent use. Failures are cached as well:
// a broken URL is only tried (and logged) once, unless the
// fetch was cancelled or timed out.
type Loader struct {
	client  *http.Client
	options Options

	mu    sync.Mutex
	cache map[string]*entry
}

// NewLoader returns a loader using `client`, or http.DefaultClient if nil.
func NewLoader(client *http.Client, options Options) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, options: options, cache: make(map[string]*entry)}
}

// Load returns the logo found at `href`.
func (l *Loader) Load(ctx context.Context, href string) (*Logo, error) {
	l.mu.Lock()
	e, ok := l.cache[href]
	if !ok {
		e = new(entry)
		l.cache[href] = e
	}
	l.mu.Unlock()

	e.once.Do(func() {
		e.logo, e.err = l.fetch(ctx, href)
		if e.err != nil {
			log.Printf("svgicon: failed to load logo %q: %s", href, e.err)
		}
	})
	if isTransient(e.err) {
		// cancelled or timed out: the next caller tries again
		l.mu.Lock()
		if l.cache[href] == e {
			delete(l.cache, href)
		}
		l.mu.Unlock()
	}
	return e.logo, e.err
}

func isTransient(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Reset empties the cache.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*entry)
}

func (l *Loader) fetch(ctx context.Context, href string) (*Logo, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, ErrEmptyURL
	}
	if l.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.options.Timeout)
		defer cancel()
	}

	data, err := l.read(ctx, href)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding logo: %w", err)
	}
	return &Logo{Image: img, Format: format, Data: data}, nil
}

func (l *Loader) read(ctx context.Context, href string) ([]byte, error) {
	if strings.HasPrefix(href, "data:") {
		return decodeDataURI(href)
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return l.readAll(resp.Body)
	case "file", "":
		if !l.options.AllowFiles {
			return nil, ErrFileAccess
		}
		path := href
		if u.Scheme == "file" {
			path = u.Path
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return l.readAll(f)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	if l.options.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.options.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.options.MaxBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", l.options.MaxBytes)
	}
	return data, nil
}

// decodeDataURI supports the form data:[<mediatype>][;base64],<data>
func decodeDataURI(href string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(href, "data:"), ",")
	if !ok {
		return nil, errors.New("invalid data URI: missing comma")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), err
}
