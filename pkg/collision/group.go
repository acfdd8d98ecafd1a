package collision

import (
	"fmt"
	"sync"
)

// MaxGroups is the number of distinct categories a 32 bit mask can hold
const MaxGroups = 32

// CollisionGroup is a category bit and the mask of categories it collides with
type CollisionGroup struct {
	Name     string `json:"name" yaml:"name"`
	Category uint32 `json:"category" yaml:"category"`
	Mask     uint32 `json:"mask" yaml:"mask"`
}

// GroupAll collides with every group
var GroupAll = CollisionGroup{Name: "all", Category: ^uint32(0), Mask: ^uint32(0)}

// CanCollide reports whether each group's category is accepted by the other's mask
func (g CollisionGroup) CanCollide(other CollisionGroup) bool {
	return g.Category&other.Mask != 0 && other.Category&g.Mask != 0
}

// CollidesWith returns a copy of g whose mask accepts only the given groups
func (g CollisionGroup) CollidesWith(groups ...CollisionGroup) CollisionGroup {
	var mask uint32
	for _, other := range groups {
		mask |= other.Category
	}
	g.Mask = mask
	return g
}

// GroupManager hands out one category bit per named group. A group created here
// collides with everything except itself.
type GroupManager struct {
	mu     sync.Mutex
	groups map[string]CollisionGroup
}

// NewGroupManager creates an empty manager
func NewGroupManager() *GroupManager {
	return &GroupManager{groups: make(map[string]CollisionGroup)}
}

// Create allocates a new group
func (m *GroupManager) Create(name string) (CollisionGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.groups[name]; exists {
		return CollisionGroup{}, fmt.Errorf("collision group %q already exists", name)
	}
	if len(m.groups) >= MaxGroups {
		return CollisionGroup{}, fmt.Errorf("cannot create collision group %q: limit of %d reached", name, MaxGroups)
	}

	category := uint32(1) << uint(len(m.groups))
	g := CollisionGroup{Name: name, Category: category, Mask: ^category}
	m.groups[name] = g
	return g, nil
}

// Get returns a previously created group
func (m *GroupManager) Get(name string) (CollisionGroup, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	return g, ok
}

// Groups returns the number of groups created
func (m *GroupManager) Groups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups)
}
