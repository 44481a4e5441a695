package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
)

var redisClient *redis.Client

func GetRedisClient(redisHost string) *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// RoleCache keeps resolved acting memberships per workspace. One hash per workspace holds
// every cached entry for it, so any membership change can drop them all at once.
type RoleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRoleCache(rdb *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{rdb: rdb, ttl: ttl}
}

func roleCacheKey(workspaceID uuid.UUID) string {
	return fmt.Sprintf("%s:roles", workspaceID.String())
}

func roleCacheField(scope types.Scope, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", scope.String(), userID.String())
}

// Get returns nil without error on a cache miss or an unreadable entry.
func (c *RoleCache) Get(ctx context.Context, workspaceID uuid.UUID, scope types.Scope, userID uuid.UUID) (*models.Membership, error) {
	val, err := c.rdb.HGet(ctx, roleCacheKey(workspaceID), roleCacheField(scope, userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(val) {
		return nil, nil
	}
	id, err := uuid.Parse(gjson.Get(val, "id").String())
	if err != nil {
		return nil, nil
	}
	subjectID, err := uuid.Parse(gjson.Get(val, "subject_id").String())
	if err != nil {
		return nil, nil
	}
	role, err := types.ParseRole(gjson.Get(val, "role").String())
	if err != nil {
		return nil, nil
	}
	return &models.Membership{
		ID:        id,
		Scope:     scope,
		SubjectID: subjectID,
		Role:      role,
		AddedAt:   gjson.Get(val, "added_at").Time(),
	}, nil
}

func (c *RoleCache) Set(ctx context.Context, workspaceID uuid.UUID, userID uuid.UUID, m *models.Membership) error {
	value, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := roleCacheKey(workspaceID)
	if err := c.rdb.HSet(ctx, key, roleCacheField(m.Scope, userID), string(value)).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, c.ttl).Err()
}

func (c *RoleCache) Invalidate(ctx context.Context, workspaceID uuid.UUID) error {
	return c.rdb.Del(ctx, roleCacheKey(workspaceID)).Err()
}
