package repositories

import (
	"context"
	"fmt"
	"supplychaintree/src/infra/redis"

	"github.com/google/uuid"
)

// GenerationLockRepository impede duas gerações simultâneas a partir do mesmo root.
type GenerationLockRepository struct {
	redisClient *redis.RedisClient
}

func NewGenerationLockRepository(redisClient *redis.RedisClient) *GenerationLockRepository {
	return &GenerationLockRepository{redisClient: redisClient}
}

func (r *GenerationLockRepository) generateLockKey(rootID int64) string {
	return fmt.Sprintf("lock:tree:generate:%d", rootID)
}

// Acquire retorna a função de liberação quando o lock foi obtido, ou nil se
// outra geração já detém o root.
func (r *GenerationLockRepository) Acquire(ctx context.Context, rootID int64) (func(context.Context) error, error) {
	key := r.generateLockKey(rootID)
	token := uuid.NewString()

	acquired, err := r.redisClient.TryLock(ctx, key, token)
	if err != nil {
		return nil, fmt.Errorf("GenerationLockRepository.Acquire - root %d: %w", rootID, err)
	}

	if !acquired {
		return nil, nil
	}

	return func(releaseCtx context.Context) error {
		return r.redisClient.Unlock(releaseCtx, key, token)
	}, nil
}
