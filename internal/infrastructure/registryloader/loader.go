package registryloader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
	"risk_monitor/internal/infrastructure/configloader"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Registry implements port.CurrencyRegistry over immutable maps built at load
// time. The registry is read-only after Load, so no locking is needed.
type Registry struct {
	currencies map[string]entity.CurrencyInfo
	pairs      map[string]entity.LendingPairConfig
}

// Currency returns the registry entry for a currency symbol.
func (r *Registry) Currency(symbol string) (entity.CurrencyInfo, bool) {
	c, ok := r.currencies[strings.ToUpper(symbol)]
	return c, ok
}

// Currencies returns all registry entries.
func (r *Registry) Currencies() []entity.CurrencyInfo {
	out := make([]entity.CurrencyInfo, 0, len(r.currencies))
	for _, c := range r.currencies {
		out = append(out, c)
	}
	return out
}

// PairConfig returns the lending parameters for a collateral/borrow pair.
func (r *Registry) PairConfig(collateral, borrow string) (entity.LendingPairConfig, bool) {
	p, ok := r.pairs[pairKey(collateral, borrow)]
	return p, ok
}

// Pairs returns all configured lending pairs.
func (r *Registry) Pairs() []entity.LendingPairConfig {
	out := make([]entity.LendingPairConfig, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	return out
}

func pairKey(collateral, borrow string) string {
	return strings.ToUpper(collateral) + "_" + strings.ToUpper(borrow)
}

// Loader fetches the currency registry and lending-pair configuration from
// the external configuration service, falling back to local YAML files when
// the service is not reachable. The registry is static data this layer
// consumes, not something it computes.
type Loader struct {
	client         *fasthttp.Client
	baseURL        string
	timeout        time.Duration
	currenciesFile string
	pairsFile      string
}

// NewLoader creates a registry loader from configuration.
func NewLoader(cfg configloader.RegistryConfig) *Loader {
	return &Loader{
		client:         &fasthttp.Client{},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		timeout:        time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		currenciesFile: cfg.CurrenciesFile,
		pairsFile:      cfg.PairsFile,
	}
}

// Load fetches currencies and pairs concurrently and builds the registry.
func (l *Loader) Load(ctx context.Context) (*Registry, error) {
	var currencies []entity.CurrencyInfo
	var pairs []entity.LendingPairConfig

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currencies, err = l.loadCurrencies(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		pairs, err = l.loadPairs(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg := &Registry{
		currencies: make(map[string]entity.CurrencyInfo, len(currencies)),
		pairs:      make(map[string]entity.LendingPairConfig, len(pairs)),
	}
	for _, c := range currencies {
		reg.currencies[strings.ToUpper(c.Symbol)] = c
	}
	for _, p := range pairs {
		reg.pairs[pairKey(p.CollateralSymbol, p.BorrowSymbol)] = p
	}

	logrus.Infof("Registry loaded: %d currencies, %d lending pairs", len(currencies), len(pairs))
	return reg, nil
}

func (l *Loader) loadCurrencies(ctx context.Context) ([]entity.CurrencyInfo, error) {
	if l.baseURL != "" {
		var currencies []entity.CurrencyInfo
		if err := l.fetchJSON(ctx, "/registry/currencies", &currencies); err == nil {
			return currencies, nil
		} else {
			logrus.Warnf("Remote currency registry fetch failed, falling back to %s: %v", l.currenciesFile, err)
		}
	}
	var currencies []entity.CurrencyInfo
	if err := loadYAML(l.currenciesFile, &currencies); err != nil {
		return nil, fmt.Errorf("failed to load currency registry: %w", err)
	}
	return currencies, nil
}

func (l *Loader) loadPairs(ctx context.Context) ([]entity.LendingPairConfig, error) {
	if l.baseURL != "" {
		var pairs []entity.LendingPairConfig
		if err := l.fetchJSON(ctx, "/registry/pairs", &pairs); err == nil {
			return pairs, nil
		} else {
			logrus.Warnf("Remote pair config fetch failed, falling back to %s: %v", l.pairsFile, err)
		}
	}
	var pairs []entity.LendingPairConfig
	if err := loadYAML(l.pairsFile, &pairs); err != nil {
		return nil, fmt.Errorf("failed to load lending pair config: %w", err)
	}
	return pairs, nil
}

func (l *Loader) fetchJSON(ctx context.Context, path string, out interface{}) error {
	requestURL := l.baseURL + path

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := l.client.DoDeadline(req, resp, deadline); err != nil {
			return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := l.client.DoTimeout(req, resp, l.timeout); err != nil {
			return fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("registry request to %s failed with status %d: %s",
			requestURL, resp.StatusCode(), string(resp.Body()))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal registry response from %s: %w", requestURL, err)
	}
	return nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

var _ port.CurrencyRegistry = (*Registry)(nil)
