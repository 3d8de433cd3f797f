package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nurpe/seminar-quote/internal/model"
)

var ErrSourceNotConfigured = errors.New("price source not configured")

// Source produces a price table from one tier of the resolution chain.
type Source interface {
	Fetch(ctx context.Context) (model.PriceTable, error)
}

// RemoteSource reads the flat price sheet published over HTTP.
type RemoteSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewRemoteSource(url string, timeout time.Duration, client *http.Client) *RemoteSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteSource{url: strings.TrimSpace(url), client: client, timeout: timeout}
}

func (s *RemoteSource) Fetch(ctx context.Context) (model.PriceTable, error) {
	if s.url == "" {
		return model.PriceTable{}, fmt.Errorf("remote: %w", ErrSourceNotConfigured)
	}
	body, err := s.get(ctx, s.url)
	if err != nil {
		return model.PriceTable{}, err
	}
	defer body.Close()
	return DecodeFlat(body)
}

// get returns the response body; the request timeout ends when the body is
// closed.
func (s *RemoteSource) get(ctx context.Context, url string) (io.ReadCloser, error) {
	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	body, err := s.do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelOnClose{ReadCloser: body, cancel: cancel}, nil
}

func (s *RemoteSource) do(req *http.Request) (io.ReadCloser, error) {
	req.Header.Set("Accept", "application/json")
	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		res.Body.Close()
		return nil, fmt.Errorf("unexpected price response %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res.Body, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// LocalSource reads the nested fallback file. Paths starting with http://
// or https:// are fetched instead of opened.
type LocalSource struct {
	path   string
	remote *RemoteSource
}

func NewLocalSource(path string, timeout time.Duration, client *http.Client) *LocalSource {
	path = strings.TrimSpace(path)
	source := &LocalSource{path: path}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		source.remote = NewRemoteSource(path, timeout, client)
	}
	return source
}

func (s *LocalSource) Fetch(ctx context.Context) (model.PriceTable, error) {
	if s.path == "" {
		return model.PriceTable{}, fmt.Errorf("local: %w", ErrSourceNotConfigured)
	}
	if s.remote != nil {
		body, err := s.remote.get(ctx, s.path)
		if err != nil {
			return model.PriceTable{}, err
		}
		defer body.Close()
		return DecodeNested(body)
	}

	file, err := os.Open(s.path)
	if err != nil {
		return model.PriceTable{}, fmt.Errorf("open local prices: %w", err)
	}
	defer file.Close()
	return DecodeNested(file)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (model.PriceTable, error)

func (f SourceFunc) Fetch(ctx context.Context) (model.PriceTable, error) {
	return f(ctx)
}

var (
	_ Source = (*RemoteSource)(nil)
	_ Source = (*LocalSource)(nil)
	_ Source = SourceFunc(nil)
)
