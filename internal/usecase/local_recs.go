package usecase

import (
	"context"
	"fmt"

	"github.com/sodam/backend/internal/domain"
)

// LocalRecsAPI answers the dashboard's scoring calls from a ScoringService in
// the same process, so dashboard traffic never goes back through the
// rate-limited HTTP API.
type LocalRecsAPI struct {
	scoring *ScoringService
}

// NewLocalRecsAPI creates an in-process domain.RecsAPI
func NewLocalRecsAPI(scoring *ScoringService) *LocalRecsAPI {
	return &LocalRecsAPI{scoring: scoring}
}

// Score runs the weighted model through the service cache
func (a *LocalRecsAPI) Score(ctx context.Context, features domain.FeatureRecord) (*domain.ScoreResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecsAPIFailure, err)
	}
	res, err := a.scoring.Score(ctx, &domain.ScoreRequest{Features: features.Map()})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecsAPIFailure, err)
	}
	weighted, ok := res.(*domain.ScoreResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result %T", domain.ErrMalformedResponse, res)
	}
	return weighted, nil
}

// Sample returns the scored candidate areas
func (a *LocalRecsAPI) Sample(ctx context.Context) (*domain.SampleResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecsAPIFailure, err)
	}
	return a.scoring.Sample(ctx), nil
}
