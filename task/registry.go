package task

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry maps stable task names to constructed Task instances. It is
// built once at process start and passed to whatever needs to resolve a
// task by name; there is no package-level default.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]Task),
	}
}

// Register adds a task under its own name. It returns an error if a task
// with the same name is already registered.
func (r *Registry) Register(t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.Name()]; exists {
		return errors.Errorf("task with name %q already registered", t.Name())
	}
	r.tasks[t.Name()] = t
	return nil
}

// Get resolves a task by name. It returns an error if the name is unknown.
func (r *Registry) Get(name string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tasks[name]
	if !exists {
		return nil, errors.Errorf("task with name %q not found in registry", name)
	}
	return t, nil
}

// Names returns the sorted names of all registered tasks.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
