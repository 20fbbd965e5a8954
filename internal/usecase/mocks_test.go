package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/verdeai/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	getCalls int
	setCalls int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheRepository) Close() error { return nil }

func (m *MockCacheRepository) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MockCacheRepository) calls() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls, m.setCalls
}

// MockImpactModel is a mock implementation of domain.ImpactModel
type MockImpactModel struct {
	mu sync.Mutex

	identifyResult *domain.IdentificationResult
	identifyError  error
	identifyCalls  int
	// identifyGate, when set, blocks IdentifyProduct until closed
	identifyGate    chan struct{}
	identifyStarted chan struct{}

	scoreResults map[string]*domain.ScoreResult
	scoreError   error
	scoreCalls   int
	// scoreGate, when set, blocks ScoreProduct until closed
	scoreGate    chan struct{}
	scoreStarted chan struct{}

	actions      []string
	actionsError error
	actionCalls  int
	lastEcoReq   domain.EcoActionRequest
}

func NewMockImpactModel() *MockImpactModel {
	return &MockImpactModel{
		scoreResults: make(map[string]*domain.ScoreResult),
	}
}

func (m *MockImpactModel) IdentifyProduct(ctx context.Context, photo *domain.Photo) (*domain.IdentificationResult, error) {
	m.mu.Lock()
	m.identifyCalls++
	gate, started := m.identifyGate, m.identifyStarted
	result, err := m.identifyResult, m.identifyError
	m.mu.Unlock()

	if gateErr := waitGate(ctx, gate, started); gateErr != nil {
		return nil, gateErr
	}
	if err != nil {
		return nil, err
	}
	copied := *result
	return &copied, nil
}

func (m *MockImpactModel) ScoreProduct(ctx context.Context, productName string) (*domain.ScoreResult, error) {
	m.mu.Lock()
	m.scoreCalls++
	gate, started := m.scoreGate, m.scoreStarted
	scoreErr := m.scoreError
	result, ok := m.scoreResults[normalizeProductName(productName)]
	m.mu.Unlock()

	if err := waitGate(ctx, gate, started); err != nil {
		return nil, err
	}
	if scoreErr != nil {
		return nil, scoreErr
	}
	if ok {
		copied := *result
		copied.Notes = append([]string(nil), result.Notes...)
		return &copied, nil
	}
	return &domain.ScoreResult{Identified: false, Notes: []string{"Unrecognised product."}}, nil
}

func (m *MockImpactModel) SuggestEcoActions(ctx context.Context, req domain.EcoActionRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionCalls++
	m.lastEcoReq = req
	if m.actionsError != nil {
		return nil, m.actionsError
	}
	return append([]string(nil), m.actions...), nil
}

// waitGate behaves like a slow model call: it reports that the call began,
// then holds until the gate opens or ctx is cancelled.
func waitGate(ctx context.Context, gate, started chan struct{}) error {
	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockImpactModel) counts() (identify, score, actions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identifyCalls, m.scoreCalls, m.actionCalls
}

// rubric-conforming answers used across scorer and analyzer tests
func appleScore() *domain.ScoreResult {
	return &domain.ScoreResult{
		NormalizedName:      "Maçã",
		Category:            "Food",
		CarbonScore:         8,
		WaterScore:          15,
		SustainabilityScore: 85,
		Notes:               []string{"Fresh produce with low processing.", "Compostable waste."},
		Identified:          true,
	}
}

func petBottleScore() *domain.ScoreResult {
	return &domain.ScoreResult{
		NormalizedName:      "Garrafa PET de refrigerante",
		Category:            "Beverage",
		CarbonScore:         85,
		WaterScore:          70,
		SustainabilityScore: 20,
		Notes:               []string{"Single-use plastic packaging.", "Sugary drink production is water intensive."},
		Identified:          true,
	}
}

func testPhoto() *domain.Photo {
	return &domain.Photo{
		MIMEType: "image/png",
		Data:     []byte{0x89, 'P', 'N', 'G'},
		Raw:      "data:image/png;base64,iVBORw==",
	}
}
