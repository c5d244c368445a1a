package asset

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/rigkit/parameter"
	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
)

// RedisPoseStore keeps pose definitions in Redis as YAML payloads
// Keys: {prefix}:pose:{id} holds the spec, {prefix}:poses is the id set
type RedisPoseStore struct {
	rdb    *redis.Client
	prefix string
	h      *skeleton.Hierarchy
}

// NewRedisPoseStore resolves loaded poses against h; empty prefix uses the default
func NewRedisPoseStore(rdb *redis.Client, prefix string, h *skeleton.Hierarchy) *RedisPoseStore {
	if prefix == "" {
		prefix = parameter.DefaultKeyPrefix
	}
	return &RedisPoseStore{rdb: rdb, prefix: prefix, h: h}
}

// PoseKey returns the Redis key holding pose id
func (s *RedisPoseStore) PoseKey(id string) string {
	return fmt.Sprintf("%s:pose:%s", s.prefix, id)
}

// IndexKey returns the Redis key of the pose id set
func (s *RedisPoseStore) IndexKey() string {
	return s.prefix + ":poses"
}

// Put validates spec against the hierarchy and stores it
func (s *RedisPoseStore) Put(ctx context.Context, spec PoseSpec) error {
	if spec.ID == "" {
		return ErrMissingPoseID
	}
	if _, err := BuildPose(s.h, spec); err != nil {
		return err
	}
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal pose %q: %w", spec.ID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.PoseKey(spec.ID), data, 0)
	pipe.SAdd(ctx, s.IndexKey(), spec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store pose %q: %w", spec.ID, err)
	}
	return nil
}

// Spec fetches the stored definition of id
func (s *RedisPoseStore) Spec(ctx context.Context, id string) (PoseSpec, error) {
	data, err := s.rdb.Get(ctx, s.PoseKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PoseSpec{}, fmt.Errorf("%w: %q", pose.ErrUnknownPose, id)
	}
	if err != nil {
		return PoseSpec{}, fmt.Errorf("fetch pose %q: %w", id, err)
	}
	var spec PoseSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return PoseSpec{}, fmt.Errorf("decode pose %q: %w", id, err)
	}
	return spec, nil
}

func (s *RedisPoseStore) LoadPose(ctx context.Context, id string) (*pose.Pose, error) {
	spec, err := s.Spec(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildPose(s.h, spec)
}

// IDs lists stored pose ids, sorted
func (s *RedisPoseStore) IDs(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.IndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list poses: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes id; deleting a missing pose is not an error
func (s *RedisPoseStore) Delete(ctx context.Context, id string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.PoseKey(id))
	pipe.SRem(ctx, s.IndexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete pose %q: %w", id, err)
	}
	return nil
}

// Publish stores every pose of rf
func (s *RedisPoseStore) Publish(ctx context.Context, rf *RigFile) (int, error) {
	for i, spec := range rf.Poses {
		if err := s.Put(ctx, spec); err != nil {
			return i, err
		}
	}
	return len(rf.Poses), nil
}
