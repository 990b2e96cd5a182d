package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"onchain-teller-backend/internal/config"
	"onchain-teller-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client: client,
		ctx:    ctx,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) StoreWalletSession(session *models.WalletSession, expiry time.Duration) error {
	key := fmt.Sprintf(KeyWalletSession, session.Account, session.SessionID)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(s.ctx, key, data, expiry).Err()
}

func (s *RedisService) GetWalletSession(account, sessionID string) (*models.WalletSession, error) {
	key := fmt.Sprintf(KeyWalletSession, account, sessionID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var session models.WalletSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}

	session.LastAccessed = time.Now()
	updatedData, _ := json.Marshal(session)
	s.client.Set(s.ctx, key, updatedData, TTLWalletSession)

	return &session, nil
}

func (s *RedisService) DeleteWalletSession(account, sessionID string) error {
	key := fmt.Sprintf(KeyWalletSession, account, sessionID)
	return s.client.Del(s.ctx, key).Err()
}

func (s *RedisService) SaveDisplaySnapshot(account string, state *models.DisplayState) error {
	key := fmt.Sprintf(KeyDisplaySnapshot, account)

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal display snapshot: %v", err)
	}

	return s.client.Set(s.ctx, key, data, TTLDisplaySnapshot).Err()
}

func (s *RedisService) GetDisplaySnapshot(account string) (*models.DisplayState, error) {
	key := fmt.Sprintf(KeyDisplaySnapshot, account)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get display snapshot: %v", err)
	}

	var state models.DisplayState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal display snapshot: %v", err)
	}

	return &state, nil
}

// SaveOperation upserts one journaled operation and indexes it under its
// account, trimming the index to the last 100 entries.
func (s *RedisService) SaveOperation(record *models.OperationRecord) error {
	opKey := fmt.Sprintf(KeyOperation, record.ID)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal operation: %v", err)
	}

	if err := s.client.Set(s.ctx, opKey, data, TTLOperation).Err(); err != nil {
		return fmt.Errorf("failed to save operation: %v", err)
	}

	accountKey := fmt.Sprintf(KeyAccountOperations, record.Account)
	score := float64(record.SubmittedAt.Unix())

	if err := s.client.ZAdd(s.ctx, accountKey, redis.Z{
		Score:  score,
		Member: record.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index operation: %v", err)
	}

	// Keep only last 100 operations per account
	s.client.ZRemRangeByRank(s.ctx, accountKey, 0, -101)
	s.client.Expire(s.ctx, accountKey, TTLOperation)

	return nil
}

func (s *RedisService) GetOperation(id string) (*models.OperationRecord, error) {
	key := fmt.Sprintf(KeyOperation, id)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("operation not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get operation: %v", err)
	}

	var record models.OperationRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %v", err)
	}

	return &record, nil
}

func (s *RedisService) MarkOperationAbandoned(id string) error {
	record, err := s.GetOperation(id)
	if err != nil {
		return err
	}
	if record.Status.Terminal() {
		return nil
	}

	record.Status = models.StatusAbandoned
	record.CompletedAt = time.Now()
	return s.SaveOperation(record)
}

func (s *RedisService) GetOperations(account string, limit int64) ([]*models.OperationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	accountKey := fmt.Sprintf(KeyAccountOperations, account)

	ids, err := s.client.ZRevRange(s.ctx, accountKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get operation IDs: %v", err)
	}

	var records []*models.OperationRecord
	for _, id := range ids {
		record, err := s.GetOperation(id)
		if err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func (s *RedisService) CheckRateLimit(account, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, account, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}
