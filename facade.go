package lexicon

// Namespace is the convenience facade for one namespace path. It holds no
// state of its own beyond the resolver reference and the path, so facades
// are freely shareable. A facade is independent of registration: it can be
// obtained for any valid path, and its write operations register the
// namespace on first use.
type Namespace struct {
	res  *Resolver
	path string
}

// NewNamespace is the default namespace facade factory. Custom factories
// installed with WithNamespaceFactory usually delegate here and decorate
// the result.
func NewNamespace(res *Resolver, path string) *Namespace {
	return &Namespace{res: res, path: path}
}

// Path returns the namespace path the facade is bound to.
func (n *Namespace) Path() string { return n.path }

// Registry returns the Registry for this namespace, registering it when
// needed. Registration failures surface through the error sink as nil.
func (n *Namespace) Registry() *Registry {
	return n.res.Register(n.path)
}

// Set stores value under key for locale through this namespace's registry.
func (n *Namespace) Set(key string, value any, locale string) bool {
	reg := n.res.Register(n.path)
	if reg == nil {
		return false
	}
	return reg.Set(key, value, locale)
}

// Use borrows key from the full key target through this namespace's
// registry.
func (n *Namespace) Use(key, target string) bool {
	reg := n.res.Register(n.path)
	if reg == nil {
		return false
	}
	return reg.Use(key, target)
}

// T renders the value of key within this namespace under the current
// locale. Unresolved keys render the resolver's fallback.
func (n *Namespace) T(key string, args ...M) string {
	return n.res.T(n.path, key, args...)
}

// Value resolves key within this namespace.
func (n *Namespace) Value(key string) (Value, bool) {
	return n.res.Value(n.path, key)
}

// Subscribe registers fn for events of the given kind scoped to this
// namespace.
func (n *Namespace) Subscribe(kind EventKind, fn ListenerFunc) Subscription {
	return n.res.Subscribe(n.path, kind, fn)
}

// SubscribeOnce is Subscribe with automatic removal after the first
// delivery.
func (n *Namespace) SubscribeOnce(kind EventKind, fn ListenerFunc) Subscription {
	return n.res.SubscribeOnce(n.path, kind, fn)
}
