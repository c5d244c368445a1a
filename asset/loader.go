package asset

import (
	"context"
	"fmt"
	"sync"

	"github.com/lixenwraith/rigkit/pose"
	"github.com/lixenwraith/rigkit/skeleton"
)

// HierarchyLoader supplies the skeleton a rig is built on
type HierarchyLoader interface {
	LoadHierarchy(ctx context.Context) (*skeleton.Hierarchy, error)
}

// PoseLoader supplies pose definitions by id
type PoseLoader = pose.Loader

// FileSource serves a hierarchy and poses from a rig file, parsed once
type FileSource struct {
	path string
	data []byte // Non-nil for in-memory sources

	once sync.Once
	rig  *RigFile
	h    *skeleton.Hierarchy
	err  error
}

// NewFileSource reads the rig at path on first use
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// NewBytesSource serves a rig from YAML already in memory
func NewBytesSource(data []byte) *FileSource {
	return &FileSource{path: "<memory>", data: data}
}

func (s *FileSource) load() {
	s.once.Do(func() {
		if s.data != nil {
			s.rig, s.err = ParseRig(s.data)
		} else {
			s.rig, s.err = LoadRigFile(s.path)
		}
		if s.err != nil {
			return
		}
		s.h, s.err = s.rig.BuildHierarchy()
		if s.err != nil {
			s.err = fmt.Errorf("%s: %w", s.path, s.err)
		}
	})
}

// Rig returns the decoded file
func (s *FileSource) Rig() (*RigFile, error) {
	s.load()
	return s.rig, s.err
}

func (s *FileSource) LoadHierarchy(ctx context.Context) (*skeleton.Hierarchy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.load()
	return s.h, s.err
}

func (s *FileSource) LoadPose(ctx context.Context, id string) (*pose.Pose, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.load()
	if s.err != nil {
		return nil, s.err
	}
	spec, ok := s.rig.Pose(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", s.path, pose.ErrUnknownPose, id)
	}
	return BuildPose(s.h, spec)
}
