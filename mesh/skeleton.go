package mesh

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/meshweight/geom"
)

// Skeleton is a thread-safe in-memory SkeletonAccessor mapping joint names
// to world-space head positions.
type Skeleton struct {
	mu     sync.RWMutex
	joints map[string]r3.Vec
}

// NewSkeleton creates a Skeleton from joints. The map is copied.
func NewSkeleton(joints map[string]r3.Vec) (*Skeleton, error) {
	s := &Skeleton{joints: make(map[string]r3.Vec, len(joints))}
	for name, head := range joints {
		if err := s.SetJoint(name, head); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetJoint adds or moves a joint.
func (s *Skeleton) SetJoint(name string, head r3.Vec) error {
	if name == "" {
		return ErrEmptyName
	}
	if !geom.Finite(head) {
		return fmt.Errorf("%w: joint %q = %v", ErrNonFinite, name, head)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joints[name] = head
	return nil
}

// JointHeadPosition returns the head position of the named joint.
func (s *Skeleton) JointHeadPosition(name string) (r3.Vec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	head, ok := s.joints[name]
	return head, ok
}

// JointNames returns all joint names in ascending order.
func (s *Skeleton) JointNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.joints))
	for name := range s.joints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Translated returns a copy of s with every joint moved by offset.
func (s *Skeleton) Translated(offset r3.Vec) *Skeleton {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &Skeleton{joints: make(map[string]r3.Vec, len(s.joints))}
	for name, head := range s.joints {
		out.joints[name] = r3.Add(head, offset)
	}
	return out
}
