package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

const (
	projectKeyPrefix = "portfolio:project:"     // JSON document per project: portfolio:project:{id}
	projectIndexKey  = "portfolio:projects"     // Sorted set of ids, score = id
	projectSeqKey    = "portfolio:projects:seq" // Last generated id
)

// RedisStore keeps each project as a JSON string and orders them through a
// sorted set keyed by id.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Backend() string { return "redis" }

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping redis", err)
	}
	return nil
}

// ListAll returns every project in ascending id order.
func (r *RedisStore) ListAll(ctx context.Context) ([]domain.Project, error) {
	ids, err := r.client.ZRange(ctx, projectIndexKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("list project ids", err)
	}
	out := make([]domain.Project, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projectKeyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable("load projects", err)
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry without a document; skip it
			continue
		}
		var p domain.Project
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, unavailable("decode project", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Insert stores one project. Generated ids come from INCR and are claimed
// with SETNX, so a collision with a caller-supplied id moves on to the next.
func (r *RedisStore) Insert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if err := validateTitle(p); err != nil {
		return nil, err
	}

	if p.ID > 0 {
		ok, err := r.claim(ctx, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: project id %d already exists", domain.ErrInvalidInput, p.ID)
		}
		return &p, nil
	}

	for {
		id, err := r.client.Incr(ctx, projectSeqKey).Result()
		if err != nil {
			return nil, unavailable("generate project id", err)
		}
		p.ID = id
		ok, err := r.claim(ctx, p)
		if err != nil {
			return nil, err
		}
		if ok {
			return &p, nil
		}
	}
}

func (r *RedisStore) claim(ctx context.Context, p domain.Project) (bool, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("failed to marshal project: %w", err)
	}
	ok, err := r.client.SetNX(ctx, projectKey(p.ID), data, 0).Result()
	if err != nil {
		return false, unavailable("store project", err)
	}
	if !ok {
		return false, nil
	}
	if err := r.client.ZAdd(ctx, projectIndexKey, redis.Z{Score: float64(p.ID), Member: strconv.FormatInt(p.ID, 10)}).Err(); err != nil {
		return false, unavailable("index project", err)
	}
	return true, nil
}

// Update merges the patch over the stored document. SET XX keeps a record
// deleted in the meantime from being recreated.
func (r *RedisStore) Update(ctx context.Context, id int64, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(p)
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	ok, err := r.client.SetXX(ctx, projectKey(id), data, 0).Result()
	if err != nil {
		return nil, unavailable("update project", err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *RedisStore) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	data, err := r.client.GetDel(ctx, projectKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("delete project", err)
	}
	if err := r.client.ZRem(ctx, projectIndexKey, strconv.FormatInt(id, 10)).Err(); err != nil {
		return nil, unavailable("unindex project", err)
	}

	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, unavailable("decode project", err)
	}
	return &p, nil
}

// ReplaceAll swaps every key in one MULTI/EXEC, watching the index so a
// concurrent insert aborts the swap instead of surviving it.
func (r *RedisStore) ReplaceAll(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	stored, err := assignIDs(projects)
	if err != nil {
		return nil, err
	}

	payloads := make([][]byte, len(stored))
	for i, p := range stored {
		if payloads[i], err = json.Marshal(p); err != nil {
			return nil, fmt.Errorf("failed to marshal project: %w", err)
		}
	}

	txf := func(tx *redis.Tx) error {
		oldIDs, err := tx.ZRange(ctx, projectIndexKey, 0, -1).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range oldIDs {
				pipe.Del(ctx, projectKeyPrefix+id)
			}
			pipe.Del(ctx, projectIndexKey)
			for i, p := range stored {
				pipe.Set(ctx, projectKey(p.ID), payloads[i], 0)
				pipe.ZAdd(ctx, projectIndexKey, redis.Z{Score: float64(p.ID), Member: strconv.FormatInt(p.ID, 10)})
			}
			pipe.Set(ctx, projectSeqKey, maxID(stored), 0)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txf, projectIndexKey); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, unavailable("replace projects", fmt.Errorf("concurrent modification"))
		}
		return nil, unavailable("replace projects", err)
	}
	return stored, nil
}

func (r *RedisStore) get(ctx context.Context, id int64) (*domain.Project, error) {
	data, err := r.client.Get(ctx, projectKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get project", err)
	}

	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, unavailable("decode project", err)
	}
	return &p, nil
}

func projectKey(id int64) string {
	return projectKeyPrefix + strconv.FormatInt(id, 10)
}
