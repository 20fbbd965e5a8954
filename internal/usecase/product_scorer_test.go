package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdeai/backend/internal/domain"
)

func TestProductScorer_ShortNames(t *testing.T) {
	ctx := context.Background()

	for _, input := range []string{"", " ", "ab", "  a  ", "çã", " ab "} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			cache := NewMockCacheRepository()
			model := NewMockImpactModel()
			svc := NewProductScorer(cache, model, ProductScorerConfig{})

			result := svc.Score(ctx, input)

			assert.False(t, result.Identified)
			assert.Equal(t, domain.CategoryUnknown, result.Category)
			assert.Zero(t, result.CarbonScore)
			assert.Zero(t, result.WaterScore)
			assert.Zero(t, result.SustainabilityScore)
			assert.Equal(t, []string{noteNameTooShort}, result.Notes)

			_, scoreCalls, _ := model.counts()
			assert.Zero(t, scoreCalls)
			gets, sets := cache.calls()
			assert.Zero(t, gets)
			assert.Zero(t, sets)
		})
	}
}

func TestProductScorer_ThreeRunesIsEnough(t *testing.T) {
	model := NewMockImpactModel()
	svc := NewProductScorer(NewMockCacheRepository(), model, ProductScorerConfig{})

	svc.Score(context.Background(), "chá")

	_, scoreCalls, _ := model.counts()
	assert.Equal(t, 1, scoreCalls)
}

func TestProductScorer_CacheIdempotence(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.scoreResults["maçã"] = appleScore()

	svc := NewProductScorer(cache, model, ProductScorerConfig{})

	first := svc.Score(ctx, "maçã")
	second := svc.Score(ctx, "  MAÇÃ ")

	assert.Equal(t, first, second)
	_, scoreCalls, _ := model.counts()
	assert.Equal(t, 1, scoreCalls)
	assert.Equal(t, 1, cache.size())

	_, err := cache.Get(ctx, "score:maçã")
	assert.NoError(t, err)
}

func TestProductScorer_AppleScenario(t *testing.T) {
	model := NewMockImpactModel()
	model.scoreResults["maçã"] = appleScore()
	svc := NewProductScorer(NewMockCacheRepository(), model, ProductScorerConfig{})

	result := svc.Score(context.Background(), "maçã")

	assert.True(t, result.Identified)
	assert.LessOrEqual(t, result.CarbonScore, 20.0)
	assert.LessOrEqual(t, result.WaterScore, 20.0)
	assert.NotEmpty(t, result.Notes)
}

func TestProductScorer_UnidentifiedIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.scoreResults["xyzzy gadget"] = &domain.ScoreResult{
		NormalizedName: "xyzzy gadget",
		CarbonScore:    40,
		WaterScore:     40,
		Identified:     false,
	}

	svc := NewProductScorer(cache, model, ProductScorerConfig{})
	first := svc.Score(ctx, "xyzzy gadget")
	svc.Score(ctx, "xyzzy gadget")

	_, scoreCalls, _ := model.counts()
	assert.Equal(t, 2, scoreCalls)
	assert.Zero(t, cache.size())

	assert.False(t, first.Identified)
	assert.Zero(t, first.CarbonScore)
	assert.Zero(t, first.WaterScore)
	assert.Equal(t, domain.CategoryUnknown, first.Category)
}

func TestProductScorer_PostConditions(t *testing.T) {
	model := NewMockImpactModel()
	model.scoreResults["caneca de cerâmica"] = &domain.ScoreResult{
		CarbonScore:         30,
		WaterScore:          25,
		SustainabilityScore: 70,
		Identified:          true,
	}
	svc := NewProductScorer(NewMockCacheRepository(), model, ProductScorerConfig{})

	result := svc.Score(context.Background(), "  Caneca de cerâmica ")

	assert.True(t, result.Identified)
	assert.Equal(t, "Caneca de cerâmica", result.NormalizedName)
	assert.Equal(t, domain.CategoryUnknown, result.Category)
	assert.NotNil(t, result.Notes)
}

func TestProductScorer_ModelFailures(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory string
		wantNote     string
	}{
		{
			name:         "unavailable model yields error category",
			err:          fmt.Errorf("%w: connection refused", domain.ErrModelUnavailable),
			wantCategory: domain.CategoryError,
			wantNote:     noteScoringFailed,
		},
		{
			name:         "malformed output yields unknown category",
			err:          fmt.Errorf("%w: missing carbonScore", domain.ErrMalformedOutput),
			wantCategory: domain.CategoryUnknown,
			wantNote:     noteModelFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewMockCacheRepository()
			model := NewMockImpactModel()
			model.scoreError = tt.err
			svc := NewProductScorer(cache, model, ProductScorerConfig{})

			result := svc.Score(context.Background(), "garrafa pet")

			require.NotNil(t, result)
			assert.False(t, result.Identified)
			assert.Equal(t, tt.wantCategory, result.Category)
			assert.Equal(t, []string{tt.wantNote}, result.Notes)
			assert.Zero(t, result.CarbonScore+result.WaterScore+result.SustainabilityScore)
			assert.Zero(t, cache.size())
		})
	}
}

func TestProductScorer_ConcurrentMissesShareOneCall(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.scoreResults["maçã"] = appleScore()
	gate := make(chan struct{})
	model.scoreGate = gate
	model.scoreStarted = make(chan struct{}, 1)

	svc := NewProductScorer(cache, model, ProductScorerConfig{})

	names := []string{"maçã", "Maçã", "  MAÇÃ ", "maçã", "Maçã ", "maçã", "MAÇÃ", "maçã"}
	var wg sync.WaitGroup
	results := make([]*domain.ScoreResult, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = svc.Score(ctx, name)
		}(i, name)
	}
	<-model.scoreStarted
	close(gate)
	wg.Wait()

	_, scoreCalls, _ := model.counts()
	assert.Equal(t, 1, scoreCalls)
	assert.Equal(t, 1, cache.size())
	for _, r := range results {
		require.NotNil(t, r)
		assert.True(t, r.Identified)
		assert.Equal(t, "Food", r.Category)
	}
}

func TestProductScorer_CancelledCallerDoesNotFailOthers(t *testing.T) {
	cache := NewMockCacheRepository()
	model := NewMockImpactModel()
	model.scoreResults["maçã"] = appleScore()
	model.scoreGate = make(chan struct{})
	model.scoreStarted = make(chan struct{}, 1)

	svc := NewProductScorer(cache, model, ProductScorerConfig{})

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan *domain.ScoreResult, 1)
	go func() { doneA <- svc.Score(ctxA, "maçã") }()
	<-model.scoreStarted

	doneB := make(chan *domain.ScoreResult, 1)
	go func() { doneB <- svc.Score(context.Background(), "Maçã") }()

	cancelA()
	abandoned := <-doneA
	assert.False(t, abandoned.Identified)

	close(model.scoreGate)
	live := <-doneB
	require.NotNil(t, live)
	assert.True(t, live.Identified)
	assert.Equal(t, "Food", live.Category)
	assert.Equal(t, 85.0, live.SustainabilityScore)

	_, scoreCalls, _ := model.counts()
	assert.Equal(t, 1, scoreCalls)
	assert.Equal(t, 1, cache.size())
}
