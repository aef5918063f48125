package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source fetches a full catalog snapshot. Implementations: HTTPSource against
// the storefront's aggregate pricing endpoint, or any injected stub (tests
// and development select a source by construction, never by path probing).
type Source interface {
	Fetch(ctx context.Context) (*Catalog, error)
}

// HTTPSource loads the catalog from GET {baseURL}/catalog/pricing.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTP catalog source.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/catalog/pricing", nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	return decodeCatalog(body)
}

// decodeCatalog accepts either a bare catalog snapshot or the storefront's
// standard {code, message, data} envelope around one. A snapshot with no
// price groups is a fetch failure, not a catalog: installing it would price
// everything as zero.
func decodeCatalog(body []byte) (*Catalog, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	raw := body
	if err := json.Unmarshal(body, &envelope); err == nil &&
		len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		raw = envelope.Data
	}

	var catalog Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(catalog.BaseMaterials)+len(catalog.Shapes)+
		len(catalog.AddOns)+len(catalog.Packaging) == 0 {
		return nil, fmt.Errorf("decode catalog: snapshot has no price groups")
	}
	return &catalog, nil
}

// StaticSource serves a fixed catalog. Used as the injected fake in tests and
// offline development.
type StaticSource struct {
	Catalog *Catalog
}

func (s *StaticSource) Fetch(ctx context.Context) (*Catalog, error) {
	return s.Catalog, nil
}

// Service owns the process-lifetime catalog snapshot: loaded once at startup,
// replaced wholesale on refresh, never partially mutated. While the source is
// unavailable callers transparently get the built-in fallback; a background
// retry swaps in the live catalog when the source recovers.
type Service struct {
	src           Source
	logger        *zap.Logger
	retryInterval time.Duration

	mu      sync.RWMutex
	current *Catalog
	live    bool
	loaded  bool

	sf        singleflight.Group
	retryOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewService creates a catalog service starting on the fallback catalog.
func NewService(src Source, retryInterval time.Duration, logger *zap.Logger) *Service {
	return &Service{
		src:           src,
		logger:        logger,
		retryInterval: retryInterval,
		current:       FallbackCatalog().WithLogger(logger),
		stop:          make(chan struct{}),
	}
}

// Init resolves the initial load. Concurrent callers share one in-flight
// fetch. On failure the fallback catalog stays active and a background retry
// starts; Init still returns a usable catalog either way.
func (s *Service) Init(ctx context.Context) *Catalog {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return s.Current()
	}

	s.sf.Do("load", func() (interface{}, error) {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("Catalog source unavailable, serving fallback catalog", zap.Error(err))
			s.startRetry()
		}
		s.mu.Lock()
		s.loaded = true
		s.mu.Unlock()
		return nil, nil
	})
	return s.Current()
}

// Current returns the active catalog snapshot.
func (s *Service) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Live reports whether the active snapshot came from the source rather than
// the built-in fallback.
func (s *Service) Live() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Refresh fetches a new snapshot and installs it wholesale.
func (s *Service) Refresh(ctx context.Context) error {
	catalog, err := s.src.Fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = catalog.WithLogger(s.logger)
	s.live = true
	s.mu.Unlock()

	s.logger.Info("Pricing catalog refreshed",
		zap.Int("base_materials", len(catalog.BaseMaterials)),
		zap.Int("shapes", len(catalog.Shapes)),
		zap.Int("add_ons", len(catalog.AddOns)),
		zap.Int("packaging", len(catalog.Packaging)),
	)
	return nil
}

// Close stops the background retry loop.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Service) startRetry() {
	s.retryOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(s.retryInterval)
			defer ticker.Stop()
			for {
				select {
				case <-s.stop:
					return
				case <-ticker.C:
					if err := s.Refresh(context.Background()); err != nil {
						s.logger.Warn("Catalog retry failed", zap.Error(err))
						continue
					}
					return
				}
			}
		}()
	})
}
