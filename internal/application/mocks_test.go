package application_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mudit06mah/guardian/internal/application"
	"github.com/mudit06mah/guardian/internal/domain/model"
	"github.com/mudit06mah/guardian/internal/domain/port/driven"
	"github.com/mudit06mah/guardian/internal/domain/scanner"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- RepoStore ---

type mockRepoStore struct {
	mu        sync.Mutex
	repos     []model.Repository
	listCalls int
	mutations int
}

func (m *mockRepoStore) Add(_ context.Context, repo model.Repository) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	m.repos = append(m.repos, repo)
	return nil
}

func (m *mockRepoStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	m.repos = slices.DeleteFunc(m.repos, func(r model.Repository) bool { return r.ID == id })
	return nil
}

func (m *mockRepoStore) ListTrackedByFullName(_ context.Context, fullName string) ([]model.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	var out []model.Repository
	for _, r := range m.repos {
		if r.FullName == fullName && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepoStore) ListAll(_ context.Context) ([]model.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.repos), nil
}

// --- InstallationStore ---

type mockInstallationStore struct {
	mu          sync.Mutex
	creds       map[int64]model.InstallationCredential
	getCalls    int
	updateCalls int
}

func newMockInstallationStore(creds ...model.InstallationCredential) *mockInstallationStore {
	m := &mockInstallationStore{creds: make(map[int64]model.InstallationCredential)}
	for _, c := range creds {
		m.creds[c.InstallationID] = c
	}
	return m
}

func (m *mockInstallationStore) Get(_ context.Context, id int64) (*model.InstallationCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	c, ok := m.creds[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *mockInstallationStore) Upsert(_ context.Context, cred model.InstallationCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.creds[cred.InstallationID]; ok {
		existing.Token = cred.Token
		m.creds[cred.InstallationID] = existing
		return nil
	}
	m.creds[cred.InstallationID] = cred
	return nil
}

func (m *mockInstallationStore) UpdateToken(_ context.Context, id int64, token model.InstallationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	c, ok := m.creds[id]
	if !ok {
		return driven.ErrInstallationNotFound
	}
	c.Token = token
	m.creds[id] = c
	return nil
}

func (m *mockInstallationStore) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[id]; !ok {
		return 0, nil
	}
	delete(m.creds, id)
	return 1, nil
}

func (m *mockInstallationStore) token(id int64) model.InstallationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds[id].Token
}

// --- CredentialProvider ---

type mockCredentialProvider struct {
	token        model.InstallationToken
	err          error
	refresh      bool
	requestCalls atomic.Int32
	refreshCalls atomic.Int32
}

func (m *mockCredentialProvider) RequestInstallationToken(_ context.Context, _ int64) (model.InstallationToken, error) {
	m.requestCalls.Add(1)
	if m.err != nil {
		return model.InstallationToken{}, m.err
	}
	return m.token, nil
}

func (m *mockCredentialProvider) RefreshIfNeeded(_ context.Context, _ int64, current model.InstallationToken) (model.InstallationToken, bool, error) {
	m.refreshCalls.Add(1)
	if m.err != nil {
		return model.InstallationToken{}, false, m.err
	}
	if !m.refresh {
		return current, false, nil
	}
	return m.token, true, nil
}

// --- WorkflowFetcher ---

type mockFetcher struct {
	workflows []model.WorkflowRef
	files     map[string]string // path -> content
	errs      map[string]error  // path -> error
	getCalls  atomic.Int32
	refs      sync.Map // path -> ref requested
}

func (m *mockFetcher) ListWorkflows(_ context.Context, _ string) ([]model.WorkflowRef, error) {
	return m.workflows, nil
}

func (m *mockFetcher) GetWorkflowFile(_ context.Context, _, path, ref string) (*model.WorkflowFile, error) {
	m.getCalls.Add(1)
	m.refs.Store(path, ref)
	if err := m.errs[path]; err != nil {
		return nil, err
	}
	content, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &model.WorkflowFile{Path: path, Ref: ref, Content: content}, nil
}

// --- IncidentStore ---

type mockIncidentStore struct {
	mu        sync.Mutex
	incidents []model.Incident
	ignored   [][]model.IncidentStatus
}

func (m *mockIncidentStore) CreateIfAbsent(_ context.Context, incident model.Incident, ignored []model.IncidentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignored = append(m.ignored, ignored)

	for _, existing := range m.incidents {
		if existing.Key() == incident.Key() && !slices.Contains(ignored, existing.Status) {
			return false, nil
		}
	}
	incident.ID = fmt.Sprintf("inc-%d", len(m.incidents)+1)
	incident.CreatedAt = time.Now()
	m.incidents = append(m.incidents, incident)
	return true, nil
}

func (m *mockIncidentStore) ListByRepository(_ context.Context, repositoryID string) ([]model.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Incident
	for _, inc := range m.incidents {
		if inc.RepositoryID == repositoryID {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (m *mockIncidentStore) all() []model.Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.incidents)
}

// --- wiring ---

// harness wires a Router over the mocks above with the real scanner.
type harness struct {
	repos        *mockRepoStore
	installs     *mockInstallationStore
	creds        *mockCredentialProvider
	fetcher      *mockFetcher
	incidents    *mockIncidentStore
	fetchers     *application.FetcherProvider
	factoryCalls atomic.Int32
	factoryToken atomic.Value
	router       *application.Router
}

func newHarness() *harness {
	h := &harness{
		repos:     &mockRepoStore{},
		installs:  newMockInstallationStore(),
		creds:     &mockCredentialProvider{},
		fetcher:   &mockFetcher{files: map[string]string{}},
		incidents: &mockIncidentStore{},
	}

	h.fetchers = application.NewFetcherProvider(func(token string) (driven.WorkflowFetcher, error) {
		h.factoryCalls.Add(1)
		h.factoryToken.Store(token)
		return h.fetcher, nil
	})

	logger := discardLogger()
	tokens := application.NewTokenService(h.creds, h.installs, h.fetchers, logger)
	scans := application.NewWorkflowScanService(scanner.NewCache(0), logger)
	reconciler := application.NewIncidentReconciler(h.incidents, logger)
	h.router = application.NewRouter(h.repos, tokens, scans, reconciler, logger)

	return h
}

func (h *harness) track(id, fullName string) {
	h.repos.repos = append(h.repos.repos, model.Repository{
		ID:           id,
		AccountLogin: "alice",
		FullName:     fullName,
		IsActive:     true,
	})
}

func (h *harness) install(id int64, token string, expiresAt time.Time) {
	h.installs.creds[id] = model.InstallationCredential{
		InstallationID: id,
		AccountLogin:   "octo-org",
		Token:          model.InstallationToken{Value: token, ExpiresAt: expiresAt},
	}
}
