package application

import (
	"fmt"
	"sync"

	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// FetcherFactory builds a WorkflowFetcher authenticated with token.
type FetcherFactory func(token string) (driven.WorkflowFetcher, error)

// FetcherProvider caches one WorkflowFetcher per installation so that the
// HTTP transport and its ETag cache survive across webhook deliveries.
// A fetcher is rebuilt when the installation's token changes.
type FetcherProvider struct {
	mu       sync.RWMutex
	factory  FetcherFactory
	fetchers map[int64]cachedFetcher
}

type cachedFetcher struct {
	token   string
	fetcher driven.WorkflowFetcher
}

// NewFetcherProvider creates a provider that builds fetchers with factory.
func NewFetcherProvider(factory FetcherFactory) *FetcherProvider {
	return &FetcherProvider{
		factory:  factory,
		fetchers: make(map[int64]cachedFetcher),
	}
}

// Get returns the fetcher for installationID authenticated with token.
func (p *FetcherProvider) Get(installationID int64, token string) (driven.WorkflowFetcher, error) {
	p.mu.RLock()
	cached, ok := p.fetchers[installationID]
	p.mu.RUnlock()
	if ok && cached.token == token {
		return cached.fetcher, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another goroutine may have rebuilt it while we waited for the lock.
	if cached, ok := p.fetchers[installationID]; ok && cached.token == token {
		return cached.fetcher, nil
	}

	fetcher, err := p.factory(token)
	if err != nil {
		return nil, fmt.Errorf("build fetcher for installation %d: %w", installationID, err)
	}
	p.fetchers[installationID] = cachedFetcher{token: token, fetcher: fetcher}

	return fetcher, nil
}

// Evict drops the cached fetcher of an installation.
func (p *FetcherProvider) Evict(installationID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fetchers, installationID)
}

// Len returns the number of cached fetchers.
func (p *FetcherProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.fetchers)
}
