package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MetaName is the <meta name=...> a host page uses to embed the proxy URL.
const MetaName = "worker-url"

const defaultPageTimeout = 10 * time.Second

// Provider is one source of the proxy URL. An empty result with a nil error
// means "not set here".
type Provider interface {
	Name() string
	Lookup(ctx context.Context) (string, error)
}

// StaticProvider returns a value fixed at startup, e.g. a flag.
type StaticProvider struct {
	name  string
	value string
}

func NewStaticProvider(name, value string) *StaticProvider {
	return &StaticProvider{name: name, value: value}
}

func (p *StaticProvider) Name() string { return p.name }

func (p *StaticProvider) Lookup(ctx context.Context) (string, error) {
	return strings.TrimSpace(p.value), nil
}

// MetaProvider reads the URL from a host page, either a local HTML file or an
// http(s) URL.
type MetaProvider struct {
	source string
	client *http.Client
}

// NewMetaProvider uses a client with a default timeout when client is nil.
func NewMetaProvider(source string, client *http.Client) *MetaProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultPageTimeout}
	}
	return &MetaProvider{source: source, client: client}
}

func (p *MetaProvider) Name() string { return "page meta" }

func (p *MetaProvider) Lookup(ctx context.Context) (string, error) {
	if p.source == "" {
		return "", nil
	}

	page, err := p.open(ctx)
	if err != nil {
		return "", err
	}
	defer page.Close()

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return "", fmt.Errorf("failed to parse page %s: %w", p.source, err)
	}

	content := doc.Find(fmt.Sprintf(`meta[name=%q]`, MetaName)).First().AttrOr("content", "")
	return strings.TrimSpace(content), nil
}

func (p *MetaProvider) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(p.source, "http://") && !strings.HasPrefix(p.source, "https://") {
		f, err := os.Open(p.source)
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create page request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("page %s returned status %d", p.source, resp.StatusCode)
	}
	return resp.Body, nil
}

// StoreProvider returns the URL saved by an earlier resolution or by the
// settings command.
type StoreProvider struct {
	store Store
}

func NewStoreProvider(store Store) *StoreProvider {
	return &StoreProvider{store: store}
}

func (p *StoreProvider) Name() string { return "saved setting" }

func (p *StoreProvider) Lookup(ctx context.Context) (string, error) {
	v, err := p.store.Get(ctx, WorkerURLKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return strings.TrimSpace(v), err
}

// DefaultProvider returns the compiled-in URL.
type DefaultProvider struct {
	value string
}

func NewDefaultProvider(value string) *DefaultProvider {
	return &DefaultProvider{value: value}
}

func (p *DefaultProvider) Name() string { return "default" }

func (p *DefaultProvider) Lookup(ctx context.Context) (string, error) {
	return p.value, nil
}

// Resolver queries providers in priority order; the first non-empty value wins.
// A value equal to the sentinel means nothing usable was configured.
type Resolver struct {
	providers []Provider
	store     Store
	sentinel  string
}

// NewResolver caches winning values in store when store is non-nil.
func NewResolver(store Store, sentinel string, providers ...Provider) *Resolver {
	return &Resolver{providers: providers, store: store, sentinel: sentinel}
}

// Resolve never fails; ok is false when the endpoint is unconfigured.
func (r *Resolver) Resolve(ctx context.Context) (string, bool) {
	endpoint, _, ok := r.ResolveSource(ctx)
	return endpoint, ok
}

// ResolveSource is Resolve plus the name of the provider that answered.
func (r *Resolver) ResolveSource(ctx context.Context) (endpoint, source string, ok bool) {
	return r.resolve(ctx, true)
}

// Describe is ResolveSource without saving the winning value.
func (r *Resolver) Describe(ctx context.Context) (endpoint, source string, ok bool) {
	return r.resolve(ctx, false)
}

func (r *Resolver) resolve(ctx context.Context, save bool) (endpoint, source string, ok bool) {
	for _, p := range r.providers {
		v, err := p.Lookup(ctx)
		if err != nil {
			log.Printf("endpoint provider %q skipped: %v", p.Name(), err)
			continue
		}
		if v == "" {
			continue
		}
		if v == r.sentinel {
			return "", p.Name(), false
		}

		if _, fromStore := p.(*StoreProvider); save && !fromStore {
			r.remember(ctx, v)
		}
		return v, p.Name(), true
	}
	return "", "", false
}

// remember writes v to the store unless it is already there.
func (r *Resolver) remember(ctx context.Context, v string) {
	if r.store == nil {
		return
	}
	if cur, err := r.store.Get(ctx, WorkerURLKey); err == nil && cur == v {
		return
	}
	if err := r.store.Set(ctx, WorkerURLKey, v); err != nil {
		log.Printf("failed to save endpoint: %v", err)
	}
}
