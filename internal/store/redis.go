package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nhle/guidance/internal/model"
)

// RedisStore keeps each session as a JSON document and indexes ids in
// sorted sets scored by UpdatedAt (unix millis):
//
//	{prefix}:session:{id}     session document
//	{prefix}:sessions         every session id
//	{prefix}:status:{status}  ids currently in that status
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisStore connects to addr and verifies the server answers.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if prefix == "" {
		prefix = "guidance"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (r *RedisStore) sessionKey(id string) string { return r.prefix + ":session:" + id }
func (r *RedisStore) allKey() string              { return r.prefix + ":sessions" }
func (r *RedisStore) statusKey(s model.Status) string {
	return r.prefix + ":status:" + string(s)
}

var allStatuses = []model.Status{model.StatusOngoing, model.StatusResolved, model.StatusUnresolved}

func (r *RedisStore) Save(ctx context.Context, s *model.GuidanceSession) error {
	if s.ID == "" {
		return fmt.Errorf("saving session: empty id")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	member := goredis.Z{Score: float64(s.UpdatedAt.UnixMilli()), Member: s.ID}

	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(s.ID), raw, 0)
		pipe.ZAdd(ctx, r.allKey(), member)
		for _, st := range allStatuses {
			if st != s.Status() {
				pipe.ZRem(ctx, r.statusKey(st), s.ID)
			}
		}
		pipe.ZAdd(ctx, r.statusKey(s.Status()), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*model.GuidanceSession, error) {
	raw, err := r.rdb.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}

	var s model.GuidanceSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisStore) List(ctx context.Context, filter SessionFilter) ([]model.GuidanceSession, error) {
	index := r.allKey()
	if filter.Status != nil {
		index = r.statusKey(*filter.Status)
	}

	ids, err := r.rdb.ZRevRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	docs, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	var result []model.GuidanceSession
	for i, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// Index entry without a document; skip it.
			continue
		}
		var s model.GuidanceSession
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decoding session %s: %w", ids[i], err)
		}
		if filter.matches(&s) {
			result = append(result, s)
		}
	}

	sortRecentFirst(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	var del *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, r.sessionKey(id))
		pipe.ZRem(ctx, r.allKey(), id)
		for _, st := range allStatuses {
			pipe.ZRem(ctx, r.statusKey(st), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
