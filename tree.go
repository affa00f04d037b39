package lexicon

import "slices"

// namespaceEntry holds the at-most-one Registry and at-most-one facade of a
// namespace path. The two slots are created lazily and independently: asking
// for a facade never registers, registering never builds a facade.
type namespaceEntry struct {
	registry *Registry
	facade   *Namespace
}

// namespaceTree maps every known full namespace path to its entry. Access is
// serialized by the owning resolver's lock.
type namespaceTree map[string]*namespaceEntry

// entry returns the entry for path, creating it when absent.
func (t namespaceTree) entry(path string) *namespaceEntry {
	e, ok := t[path]
	if !ok {
		e = &namespaceEntry{}
		t[path] = e
	}
	return e
}

// registryAt returns the Registry registered exactly at path, or nil.
func (t namespaceTree) registryAt(path string) *Registry {
	if e, ok := t[path]; ok {
		return e.registry
	}
	return nil
}

// names returns the sorted paths of all registered namespaces.
func (t namespaceTree) names() []string {
	var names []string
	for path, e := range t {
		if e.registry != nil {
			names = append(names, path)
		}
	}
	slices.Sort(names)
	return names
}

func (t namespaceTree) registered() int {
	count := 0
	for _, e := range t {
		if e.registry != nil {
			count++
		}
	}
	return count
}
