package atlas

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	internalimage "github.com/gogpu/mosaic/internal/image"
)

// Load errors.
var (
	// ErrUnsupportedScheme is returned for URL schemes other than
	// file, http, https and data.
	ErrUnsupportedScheme = errors.New("atlas: unsupported URL scheme")

	// ErrBadDataURI is returned for a malformed data: URI.
	ErrBadDataURI = errors.New("atlas: malformed data URI")
)

// maxDownload limits the size of atlases fetched over HTTP.
const maxDownload = 64 << 20

// Loader fetches and decodes atlas images.
// The zero value is ready to use and fetches with http.DefaultClient.
type Loader struct {
	// Client is used for http(s) sources. Nil means http.DefaultClient.
	Client *http.Client
}

// Load fetches src with the zero Loader.
func Load(ctx context.Context, src string, cellCount, setCount int) (*Atlas, error) {
	var l Loader
	return l.Load(ctx, src, cellCount, setCount)
}

// Load fetches and decodes the atlas at src. See the package documentation
// for the supported sources.
func (l *Loader) Load(ctx context.Context, src string, cellCount, setCount int) (*Atlas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch scheme := schemeOf(src); scheme {
	case "":
		return loadFile(src, cellCount, setCount)
	case "file":
		u, perr := url.Parse(src)
		if perr != nil {
			return nil, fmt.Errorf("atlas: parse %q: %w", src, perr)
		}
		return loadFile(u.Path, cellCount, setCount)
	case "http", "https":
		data, err = l.fetch(ctx, src)
	case "data":
		data, err = decodeDataURI(src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	if err != nil {
		return nil, err
	}

	img, err := internalimage.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}
	return New(img, cellCount, setCount)
}

// LoadFS loads the atlas named name from fsys.
func LoadFS(fsys fs.FS, name string, cellCount, setCount int) (*Atlas, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("atlas: open %q: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(f, cellCount, setCount)
}

// LoadReader decodes an atlas image from r.
func LoadReader(r io.Reader, cellCount, setCount int) (*Atlas, error) {
	img, err := internalimage.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}
	return New(img, cellCount, setCount)
}

func loadFile(path string, cellCount, setCount int) (*Atlas, error) {
	img, err := internalimage.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}
	return New(img, cellCount, setCount)
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("atlas: request %q: %w", src, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("atlas: fetch %q: %w", src, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("atlas: fetch %q: %s", src, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("atlas: read %q: %w", src, err)
	}
	return data, nil
}

// schemeOf returns the lowercased URL scheme of src, or "" for plain paths.
// Single-letter schemes are treated as Windows drive letters.
func schemeOf(src string) string {
	i := strings.IndexByte(src, ':')
	if i < 2 {
		return ""
	}
	for _, c := range src[:i] {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !isAlpha && c != '+' && c != '-' && c != '.' && (c < '0' || c > '9') {
			return ""
		}
	}
	return strings.ToLower(src[:i])
}

// decodeDataURI decodes data:[<mediatype>][;base64],<data>.
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, ErrBadDataURI
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders omit padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDataURI, err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDataURI, err)
	}
	return []byte(data), nil
}
