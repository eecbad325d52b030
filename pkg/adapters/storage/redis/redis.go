package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ecanizales/plandag/pkg/domain"
)

const keyPrefix = "plandag:runs:"

// RunStore implements ports.RunStore using Redis with a per-run TTL
type RunStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRunStore creates a new Redis run store
func NewRunStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RunStore {
	return &RunStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// SaveRun persists a run state snapshot with the configured TTL
func (s *RunStore) SaveRun(ctx context.Context, state *domain.RunState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}

	if err := s.client.Set(ctx, getRunKey(state.RunID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save run state: %w", err)
	}

	s.logger.Debug("run state saved",
		zap.String("run_id", state.RunID),
		zap.String("status", string(state.Status)))

	return nil
}

// GetRun retrieves a run state snapshot
func (s *RunStore) GetRun(ctx context.Context, runID string) (*domain.RunState, error) {
	data, err := s.client.Get(ctx, getRunKey(runID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}

	var state domain.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}

	return &state, nil
}

// DeleteRun removes a run state snapshot
func (s *RunStore) DeleteRun(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, getRunKey(runID)).Err(); err != nil {
		return fmt.Errorf("failed to delete run state: %w", err)
	}

	s.logger.Debug("run state deleted", zap.String("run_id", runID))
	return nil
}

// ListRuns returns all run ids with stored state
func (s *RunStore) ListRuns(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	runIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		if len(key) > len(keyPrefix) {
			runIDs = append(runIDs, key[len(keyPrefix):])
		}
	}

	return runIDs, nil
}

// getRunKey returns the Redis key for a run state
func getRunKey(runID string) string {
	return keyPrefix + runID
}
