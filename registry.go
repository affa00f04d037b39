package lexicon

import "slices"

// keyEntry is one slot in a registry's table: either a direct per-locale
// value map or a borrow link to another full key. A borrow carries the live
// subscription watching its target so the link can be torn down explicitly.
type keyEntry struct {
	locales map[string]Value
	target  string
	watch   Subscription
}

func (e *keyEntry) borrowed() bool { return e.target != "" }

// Registry owns the flat key table of one namespace. Registries are obtained
// from Resolver.Register or a Namespace facade and stay valid for the
// resolver's lifetime; all methods are safe for concurrent use.
type Registry struct {
	res       *Resolver
	namespace string
	entries   map[string]*keyEntry
}

// NewRegistry is the default registry factory. Custom factories installed
// with WithRegistryFactory usually delegate here and decorate the result.
func NewRegistry(res *Resolver, namespace string) *Registry {
	return &Registry{
		res:       res,
		namespace: namespace,
		entries:   make(map[string]*keyEntry),
	}
}

// Namespace returns the full namespace path this registry owns.
func (g *Registry) Namespace() string { return g.namespace }

// Keys returns a sorted snapshot of the registry's local keys.
func (g *Registry) Keys() []string {
	g.res.mu.RLock()
	defer g.res.mu.RUnlock()
	keys := make([]string, 0, len(g.entries))
	for k := range g.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set stores value under localKey for the given locale, creating the entry
// or converting a prior borrow back to direct storage. An empty locale means
// the resolver's current locale. Returns false, after reporting through the
// error sink, when the key is malformed, the value type is unsupported, or
// the resulting full path is occupied by a registered namespace. Nothing is
// mutated on failure.
func (g *Registry) Set(localKey string, value any, locale string) bool {
	g.res.mu.Lock()
	out := g.res.begin()
	ok := g.set(localKey, value, locale)
	g.res.end()
	g.res.mu.Unlock()
	out.flush(g.res)
	return ok
}

// Use aliases localKey to resolve through target, a full key anywhere in the
// tree. Returns false, after reporting through the error sink, when either
// path is malformed, target has no namespace part, the link would close a
// borrow cycle, or either end collides with a registered namespace. Nothing
// is mutated on failure. Borrowing the identical target twice is a no-op
// success.
func (g *Registry) Use(localKey, target string) bool {
	g.res.mu.Lock()
	out := g.res.begin()
	ok := g.use(localKey, target)
	g.res.end()
	g.res.mu.Unlock()
	out.flush(g.res)
	return ok
}

func (g *Registry) set(localKey string, value any, locale string) bool {
	if !ValidPath(localKey) {
		g.res.reportf(CodeInvalidKeySyntax, g.namespace, localKey, "invalid key %q", localKey)
		return false
	}
	v, err := toValue(value)
	if err != nil {
		g.res.reportf(CodeInvalidValueType, g.namespace, localKey, "cannot store %q: %v", localKey, err)
		return false
	}
	fullKey := joinKey(g.namespace, localKey)
	if g.res.tree.registryAt(fullKey) != nil {
		g.res.reportf(CodeKeyNamespaceIntersection, fullKey, localKey, "key %q collides with registered namespace %q", localKey, fullKey)
		return false
	}
	if locale == "" {
		locale = g.res.locale
	}

	e, ok := g.entries[localKey]
	if !ok {
		e = &keyEntry{locales: make(map[string]Value)}
		g.entries[localKey] = e
	} else if e.borrowed() {
		g.res.notifier.unsubscribe(e.watch)
		e.target = ""
		e.watch = Subscription{}
		e.locales = make(map[string]Value)
	}
	e.locales[locale] = v

	g.res.invalidate(fullKey)
	g.res.emitKey(fullKey)
	return true
}

func (g *Registry) use(localKey, target string) bool {
	if e, ok := g.entries[localKey]; ok && e.borrowed() && e.target == target {
		return true
	}
	if !ValidPath(localKey) {
		g.res.reportf(CodeInvalidKeySyntax, g.namespace, localKey, "invalid key %q", localKey)
		return false
	}
	if !ValidPath(target) {
		g.res.reportf(CodeInvalidKeySyntax, g.namespace, target, "invalid borrow target %q", target)
		return false
	}
	head, rest := headSegment(target)
	if rest == "" {
		g.res.reportf(CodeInvalidKeySyntax, g.namespace, target, "borrow target %q must contain a namespace", target)
		return false
	}
	fullKey := joinKey(g.namespace, localKey)
	if target == fullKey {
		g.res.reportf(CodeCircularDependency, g.namespace, localKey, "key %q cannot borrow itself", fullKey)
		return false
	}

	// Simulate the borrow before committing: resolve the target with this
	// key pre-marked as visited. Reaching it again through any chain of
	// borrows, however indirect, flags the cycle.
	ctx := newVisitContext(g.namespace, localKey)
	ctx.mark(g, localKey)
	g.res.findValue(g.res.locale, target, ctx)
	if ctx.errored {
		return false
	}

	if g.res.tree.registryAt(fullKey) != nil {
		g.res.reportf(CodeKeyNamespaceIntersection, fullKey, localKey, "key %q collides with registered namespace %q", localKey, fullKey)
		return false
	}
	if g.res.tree.registryAt(target) != nil {
		g.res.reportf(CodeKeyNamespaceIntersection, target, localKey, "borrow target %q is a registered namespace", target)
		return false
	}

	e, ok := g.entries[localKey]
	if !ok {
		e = &keyEntry{}
		g.entries[localKey] = e
	}
	if e.watch.active() {
		g.res.notifier.unsubscribe(e.watch)
	}
	e.locales = nil
	e.target = target

	// Watch the target through its top-level scope: any change whose
	// scope-relative key matches the target's suffix invalidates this key
	// and re-fires its own change downstream.
	e.watch = g.res.notifier.subscribe(head, EventKey, func(ev Event) {
		if ev.Key == rest {
			g.res.borrowTargetChanged(fullKey)
		}
	}, false, true)

	g.res.invalidate(fullKey)
	g.res.emitKey(fullKey)
	return true
}

// resolveLocal resolves localKey inside this registry. Direct entries pick a
// locale by fallback order: requested, then the resolver's default, then any
// remaining one in map iteration order; empty values count as absent. Borrow
// entries forward the whole search to their target under the same visit
// context. Returns the value and the registry that ultimately supplied it.
func (g *Registry) resolveLocal(locale, localKey string, ctx *visitContext) (Value, *Registry) {
	e, ok := g.entries[localKey]
	if !ok {
		return nil, nil
	}
	if e.borrowed() {
		return g.res.findValue(locale, e.target, ctx)
	}
	if v, ok := present(e.locales, locale); ok {
		return v, g
	}
	if def := g.res.defaultLocale; def != locale {
		if v, ok := present(e.locales, def); ok {
			return v, g
		}
	}
	for loc, v := range e.locales {
		if loc == locale || loc == g.res.defaultLocale {
			continue
		}
		if v != nil && !v.IsEmpty() {
			return v, g
		}
	}
	return nil, nil
}

// conflictingKey reports whether any key in this registry has path as one of
// its cumulative prefixes, returning the offending key.
func (g *Registry) conflictingKey(path string) (string, bool) {
	for key := range g.entries {
		if slices.Contains(pathPrefixes(key), path) {
			return key, true
		}
	}
	return "", false
}

func present(locales map[string]Value, locale string) (Value, bool) {
	if v, ok := locales[locale]; ok && v != nil && !v.IsEmpty() {
		return v, true
	}
	return nil, false
}
