package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"traindesk/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Assigned-course catalog caching (employee read side)
	GetAssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Course, error)
	SetAssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID, courses []*models.Course, ttl time.Duration) error
	DeleteAssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID) error

	// Tenant dashboard statistics, refreshed by the background scheduler
	GetTenantStats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error)
	SetTenantStats(ctx context.Context, tenantID uuid.UUID, stats map[string]interface{}, ttl time.Duration) error

	// Cache invalidation
	InvalidateTenantCatalog(ctx context.Context, tenantID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func assignedCoursesKey(tenantID, employeeID uuid.UUID) string {
	return fmt.Sprintf("traindesk:catalog:%s:%s", tenantID.String(), employeeID.String())
}

func tenantStatsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("traindesk:stats:%s", tenantID.String())
}

func (r *redisCacheService) GetAssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID) ([]*models.Course, error) {
	data, err := r.client.Get(ctx, assignedCoursesKey(tenantID, employeeID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var courses []*models.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *redisCacheService) SetAssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID, courses []*models.Course, ttl time.Duration) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, assignedCoursesKey(tenantID, employeeID), data, ttl).Err()
}

func (r *redisCacheService) DeleteAssignedCourses(ctx context.Context, tenantID, employeeID uuid.UUID) error {
	return r.client.Del(ctx, assignedCoursesKey(tenantID, employeeID)).Err()
}

func (r *redisCacheService) GetTenantStats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	data, err := r.client.Get(ctx, tenantStatsKey(tenantID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *redisCacheService) SetTenantStats(ctx context.Context, tenantID uuid.UUID, stats map[string]interface{}, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, tenantStatsKey(tenantID), data, ttl).Err()
}

// InvalidateTenantCatalog drops every employee's cached catalog for the
// tenant. Used after content mutations that affect what employees can see.
func (r *redisCacheService) InvalidateTenantCatalog(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("traindesk:catalog:%s:*", tenantID.String())

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Get(ctx, "traindesk:ratelimit:"+key).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	fullKey := "traindesk:ratelimit:" + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return r.client.Expire(ctx, fullKey, window).Err()
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
