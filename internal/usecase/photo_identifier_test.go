package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdeai/backend/internal/domain"
)

func TestPhotoIdentifier_Identify(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		modelResult   *domain.IdentificationResult
		modelErr      error
		wantName      string
		wantIDed      bool
		wantErr       error
		wantCacheSize int
	}{
		{
			name:          "identified product is cached",
			modelResult:   &domain.IdentificationResult{ProductName: "Garrafa PET", Identified: true},
			wantName:      "Garrafa PET",
			wantIDed:      true,
			wantCacheSize: 1,
		},
		{
			name:        "landscape is not identified",
			modelResult: &domain.IdentificationResult{ProductName: "", Identified: false},
		},
		{
			name:        "name is dropped when not identified",
			modelResult: &domain.IdentificationResult{ProductName: "Mountain", Identified: false},
		},
		{
			name:        "identified without name counts as not identified",
			modelResult: &domain.IdentificationResult{ProductName: "", Identified: true},
		},
		{
			name:     "model unavailable",
			modelErr: fmt.Errorf("%w: timeout", domain.ErrModelUnavailable),
			wantErr:  domain.ErrModelUnavailable,
		},
		{
			name:     "malformed output",
			modelErr: fmt.Errorf("%w: not json", domain.ErrMalformedOutput),
			wantErr:  domain.ErrMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewMockCacheRepository()
			model := NewMockImpactModel()
			model.identifyResult = tt.modelResult
			model.identifyError = tt.modelErr

			svc := NewPhotoIdentifier(cache, model, PhotoIdentifierConfig{})
			result, err := svc.Identify(ctx, testPhoto())

			require.NotNil(t, result)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantName, result.ProductName)
			assert.Equal(t, tt.wantIDed, result.Identified)
			assert.Equal(t, tt.wantCacheSize, cache.size())
			if !result.Identified {
				assert.Empty(t, result.ProductName)
			}
		})
	}
}

func TestPhotoIdentifier_CacheHitSkipsModel(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.identifyResult = &domain.IdentificationResult{ProductName: "Lata de alumínio", Identified: true}

	svc := NewPhotoIdentifier(cache, model, PhotoIdentifierConfig{})

	first, err := svc.Identify(ctx, testPhoto())
	require.NoError(t, err)
	second, err := svc.Identify(ctx, testPhoto())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	identifyCalls, _, _ := model.counts()
	assert.Equal(t, 1, identifyCalls)
}

func TestPhotoIdentifier_NegativesAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.identifyResult = &domain.IdentificationResult{Identified: false}

	svc := NewPhotoIdentifier(cache, model, PhotoIdentifierConfig{})
	for i := 0; i < 2; i++ {
		_, err := svc.Identify(ctx, testPhoto())
		require.NoError(t, err)
	}

	identifyCalls, _, _ := model.counts()
	assert.Equal(t, 2, identifyCalls)
	assert.Zero(t, cache.size())
}

func TestPhotoIdentifier_NilPhoto(t *testing.T) {
	svc := NewPhotoIdentifier(NewMockCacheRepository(), NewMockImpactModel(), PhotoIdentifierConfig{})

	result, err := svc.Identify(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.False(t, result.Identified)
}

func TestPhotoIdentifier_CacheFailureStillIdentifies(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.getError = domain.ErrCacheUnavailable
	cache.setError = errors.New("write failed")
	model := NewMockImpactModel()
	model.identifyResult = &domain.IdentificationResult{ProductName: "Caneca", Identified: true}

	svc := NewPhotoIdentifier(cache, model, PhotoIdentifierConfig{})
	result, err := svc.Identify(context.Background(), testPhoto())

	require.NoError(t, err)
	assert.Equal(t, "Caneca", result.ProductName)
}

func TestPhotoIdentifier_ConcurrentMissesShareOneCall(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.identifyResult = &domain.IdentificationResult{ProductName: "Escova de dentes", Identified: true}
	gate := make(chan struct{})
	model.identifyGate = gate

	svc := NewPhotoIdentifier(cache, model, PhotoIdentifierConfig{})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.IdentificationResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Identify(ctx, testPhoto())
		}(i)
	}
	close(gate)
	wg.Wait()

	identifyCalls, _, _ := model.counts()
	assert.Equal(t, 1, identifyCalls)
	for _, r := range results {
		assert.Equal(t, "Escova de dentes", r.ProductName)
	}
}

func TestPhotoIdentifier_CancelledCallerDoesNotFailOthers(t *testing.T) {
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.identifyResult = &domain.IdentificationResult{ProductName: "Escova de dentes", Identified: true}
	model.identifyGate = make(chan struct{})
	model.identifyStarted = make(chan struct{}, 1)

	svc := NewPhotoIdentifier(cache, model, PhotoIdentifierConfig{})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Identify(ctxA, testPhoto())
		errA <- err
	}()
	<-model.identifyStarted

	doneB := make(chan *domain.IdentificationResult, 1)
	go func() {
		result, err := svc.Identify(context.Background(), testPhoto())
		assert.NoError(t, err)
		doneB <- result
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(model.identifyGate)
	live := <-doneB
	assert.True(t, live.Identified)
	assert.Equal(t, "Escova de dentes", live.ProductName)

	identifyCalls, _, _ := model.counts()
	assert.Equal(t, 1, identifyCalls)
}

func TestPhotoCacheKey(t *testing.T) {
	a := photoCacheKey("data:image/png;base64,AAAA")
	b := photoCacheKey("data:image/png;base64,AAAA")
	c := photoCacheKey("data:image/png;base64,AAAB")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len(photoKeyPrefix)+64)
}
