package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations. Values are
// stored serialised; Get returns the JSON bytes written by Set.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RecsAPI is the scoring API as seen by the dashboard
type RecsAPI interface {
	Score(ctx context.Context, features FeatureRecord) (*ScoreResponse, error)
	Sample(ctx context.Context) (*SampleResponse, error)
}

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
