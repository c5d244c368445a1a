package asset

import (
	"context"
	"log"

	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
)

// Library owners
const (
	OwnerStore       = "store"
	OwnerEnvironment = "environment"
)

// PoseIndex is a pose loader that can list what it holds
type PoseIndex interface {
	pose.Loader
	IDs(ctx context.Context) ([]string, error)
}

// NewLibrary registers the poses of rf for the environment owner
// With a non-nil store its poses are loaded first for the store owner and shadow file poses of the same id
func NewLibrary(ctx context.Context, rf *RigFile, h *skeleton.Hierarchy, store PoseIndex) (*pose.Library, error) {
	lib := pose.NewLibrary()

	if store != nil {
		ids, err := store.IDs(ctx)
		if err != nil {
			return nil, err
		}
		if err := lib.Load(ctx, store, OwnerStore, ids...); err != nil {
			return nil, err
		}
		log.Printf("[Asset] loaded %d poses from store", len(ids))
	}

	poses, err := rf.BuildPoses(h)
	if err != nil {
		return nil, err
	}
	for _, p := range poses {
		if _, ok := lib.Get(p.ID); ok {
			log.Printf("[Asset] pose %q: store copy shadows rig file", p.ID)
			continue
		}
		if err := lib.Register(OwnerEnvironment, p); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
