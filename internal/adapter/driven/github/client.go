// Package github implements the GitHub-facing driven ports with go-github:
// app authentication (AppAuth) and workflow content retrieval (Client).
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WorkflowFetcher = (*Client)(nil)

// DefaultRequestsPerSecond paces calls made through one Client.
const DefaultRequestsPerSecond = 10

// Client implements driven.WorkflowFetcher for one installation token.
type Client struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// ClientConfig tunes the transport of a Client. Zero values select defaults.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Limiter *rate.Limiter
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client authenticated with the installation token)
func NewClient(token string, cfg ClientConfig) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = cfg.Timeout
	if rateLimitClient.Timeout <= 0 {
		rateLimitClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(rateLimitClient).WithAuthToken(token)
	if cfg.BaseURL != "" {
		if err := setBaseURL(client, cfg.BaseURL); err != nil {
			return nil, err
		}
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond)
	}

	return &Client{gh: client, limiter: limiter}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient).WithAuthToken(token)
	if err := setBaseURL(client, baseURL); err != nil {
		return nil, err
	}

	return &Client{gh: client, limiter: rate.NewLimiter(rate.Inf, 1)}, nil
}

// ListWorkflows returns every workflow registered in the repository, following
// pagination. A repository GitHub reports as missing has no workflows.
func (c *Client) ListWorkflows(ctx context.Context, repoFullName string) ([]model.WorkflowRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	refs := []model.WorkflowRef{}

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("listing workflows for %s: %w", repoFullName, err)
		}

		workflows, resp, err := c.gh.Actions.ListWorkflows(ctx, owner, repo, opts)
		if err != nil {
			if isNotFound(resp) {
				return []model.WorkflowRef{}, nil
			}
			return nil, fmt.Errorf("listing workflows for %s (page %d): %w: %w",
				repoFullName, opts.Page, classify(resp, err), err)
		}

		logRateLimit(resp, repoFullName+"/workflows", opts.Page, len(workflows.Workflows))

		for _, w := range workflows.Workflows {
			refs = append(refs, model.WorkflowRef{Path: w.GetPath(), Name: w.GetName()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return refs, nil
}

// GetWorkflowFile returns the decoded file at path and ref. An empty ref reads
// the default branch. Returns nil, nil if nothing exists there or the path is a
// directory.
func (c *Client) GetWorkflowFile(ctx context.Context, repoFullName, path, ref string) (*model.WorkflowFile, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetching %s@%s in %s: %w", path, ref, repoFullName, err)
	}

	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if isNotFound(resp) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s@%s in %s: %w: %w", path, ref, repoFullName, classify(resp, err), err)
	}

	logRateLimit(resp, repoFullName+"/contents", 0, 1)

	if file == nil {
		return nil, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s@%s in %s: %w: %w", path, ref, repoFullName, driven.ErrUpstream, err)
	}

	return &model.WorkflowFile{Path: path, Ref: ref, Content: content}, nil
}

func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// setBaseURL points client at a GitHub API root such as a GitHub Enterprise
// Server "/api/v3/" endpoint or an httptest server.
func setBaseURL(client *gh.Client, baseURL string) error {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u
	return nil
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return owner, repo, nil
}
