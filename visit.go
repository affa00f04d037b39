package lexicon

import "slices"

// visitContext carries cycle-detection state through one full resolution.
// One context is created per top-level lookup or borrow simulation and is
// passed by pointer through the entire recursion, never copied. Visited
// pairs are not unwound on backtrack, so a pair reached again through a
// second borrow path counts as a revisit.
type visitContext struct {
	originNamespace string
	originKey       string
	visited         map[*Registry][]string
	errored         bool
}

func newVisitContext(namespace, key string) *visitContext {
	return &visitContext{
		originNamespace: namespace,
		originKey:       key,
		visited:         make(map[*Registry][]string),
	}
}

func (c *visitContext) seen(reg *Registry, key string) bool {
	return slices.Contains(c.visited[reg], key)
}

func (c *visitContext) mark(reg *Registry, key string) {
	c.visited[reg] = append(c.visited[reg], key)
}

// origin renders the full key the resolution started from, for reports.
func (c *visitContext) origin() string {
	return joinKey(c.originNamespace, c.originKey)
}
