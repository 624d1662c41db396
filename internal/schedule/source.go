package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	UserAgent = "rec-schedule/1.0 (github.com/pfrederiksen/rec-schedule)"
	Timeout   = 30 * time.Second
)

// ErrDataUnavailable is returned when a data file cannot be found or fetched.
var ErrDataUnavailable = errors.New("schedule data unavailable")

// Source fetches raw data files by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	String() string
}

// NewSource picks an HTTPSource for http(s) URLs and a DirSource otherwise.
func NewSource(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location)
	}
	return DirSource{Dir: location}
}

// DirSource reads data files from a local directory.
type DirSource struct {
	Dir string
}

// Fetch reads a file from the directory.
func (s DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found in %s", ErrDataUnavailable, name, s.Dir)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDataUnavailable, name, err)
	}
	return data, nil
}

func (s DirSource) String() string {
	return s.Dir
}

// HTTPSource fetches data files relative to a base URL.
type HTTPSource struct {
	baseURL string
	client  *resty.Client
}

// NewHTTPSource creates a source for baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: resty.New().
			SetTimeout(Timeout).
			SetHeader("User-Agent", UserAgent),
	}
}

// Fetch downloads a file. Any transport error or non-2xx status is ErrDataUnavailable.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.baseURL + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrDataUnavailable, name, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: fetching %s: status %d", ErrDataUnavailable, name, resp.StatusCode())
	}
	return resp.Body(), nil
}

func (s *HTTPSource) String() string {
	return s.baseURL
}

// checkName rejects names that would escape the data location.
func checkName(name string) error {
	if name == "" || name != path.Base(name) || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid data file name: %q", name)
	}
	return nil
}
