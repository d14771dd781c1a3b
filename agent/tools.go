package agent

import (
	"strings"
	"sync"
)

// Capability describes a simulated tool offered to the Executor. Capabilities
// are never invoked; the Executor only records that a plan mentioned one.
type Capability struct {
	Name        string
	Description string
	// Keywords are matched case-insensitively against the plan text.
	Keywords []string
}

// ToolCatalog is an ordered registry of capabilities.
type ToolCatalog struct {
	caps []Capability
	mu   sync.RWMutex
}

// NewToolCatalog creates a catalog holding caps in order.
func NewToolCatalog(caps ...Capability) *ToolCatalog {
	c := &ToolCatalog{}
	for _, tool := range caps {
		c.Register(tool)
	}
	return c
}

// DefaultToolCatalog returns the three built-in capabilities.
func DefaultToolCatalog() *ToolCatalog {
	return NewToolCatalog(
		Capability{
			Name:        "web-search",
			Description: "Para buscar información en internet",
			Keywords:    []string{"search", "busqueda", "búsqueda"},
		},
		Capability{
			Name:        "calculator",
			Description: "Para realizar cálculos",
			Keywords:    []string{"calcul"},
		},
		Capability{
			Name:        "text-analysis",
			Description: "Para analizar y procesar texto",
		},
	)
}

// Register adds a capability or replaces the one with the same name in place.
func (c *ToolCatalog) Register(tool Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.caps {
		if c.caps[i].Name == tool.Name {
			c.caps[i] = tool
			return
		}
	}
	c.caps = append(c.caps, tool)
}

// Get returns the capability with the given name, or nil.
func (c *ToolCatalog) Get(name string) *Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.caps {
		if c.caps[i].Name == name {
			tool := c.caps[i]
			return &tool
		}
	}
	return nil
}

// Capabilities returns a copy of the registered capabilities.
func (c *ToolCatalog) Capabilities() []Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Capability, len(c.caps))
	copy(out, c.caps)
	return out
}

// Names returns capability names in registration order.
func (c *ToolCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.caps))
	for i, tool := range c.caps {
		names[i] = tool.Name
	}
	return names
}

// Detect returns the names of capabilities whose keywords occur in plan, in
// catalog order. Each capability is reported at most once per call.
func (c *ToolCatalog) Detect(plan string) []string {
	lower := strings.ToLower(plan)
	c.mu.RLock()
	defer c.mu.RUnlock()
	var found []string
	for _, tool := range c.caps {
		for _, kw := range tool.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				found = append(found, tool.Name)
				break
			}
		}
	}
	return found
}

// DetectTools runs Detect against the default catalog.
func DetectTools(plan string) []string {
	return DefaultToolCatalog().Detect(plan)
}
