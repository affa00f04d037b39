package lexicon

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// DefaultLocale is the locale used when no locale is configured.
const DefaultLocale = "en"

// FallbackFunc supplies the value rendered by T when resolution fails.
type FallbackFunc func(namespace, key string) Value

// RegistryFactory constructs the Registry for a newly registered namespace.
// Custom factories usually delegate to NewRegistry and decorate the result.
type RegistryFactory func(res *Resolver, namespace string) *Registry

// NamespaceFactory constructs the facade for a namespace path.
type NamespaceFactory func(res *Resolver, namespace string) *Namespace

// Resolver is the root of one namespace tree. It owns the current and
// default locale, the resolution cache, the set of keys known to be
// unresolved, the change notifier, and the error sink. All exported methods
// are safe for concurrent use: mutations are serialized by a single write
// lock and lookups share a read lock for the cache fast path.
type Resolver struct {
	mu sync.RWMutex

	locale        string
	defaultLocale string
	configured    []string
	accepted      map[string]struct{}
	acceptedList  []string
	matching      bool

	tree       namespaceTree
	cache      *LRUCache[string, Value]
	unresolved map[string]struct{}
	notifier   *notifier

	// out collects reports and listener invocations raised while the write
	// lock is held; it is only non-nil between begin and end.
	out *outbox

	report           ReportFunc
	fallback         FallbackFunc
	logger           *slog.Logger
	registryFactory  RegistryFactory
	namespaceFactory NamespaceFactory
	cacheCapacity    int
}

// Option configures the Resolver during construction.
type Option func(*Resolver) error

// New creates a Resolver with the given options.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		locale:     DefaultLocale,
		tree:       make(namespaceTree),
		unresolved: make(map[string]struct{}),
		notifier:   newNotifier(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if r.defaultLocale == "" {
		r.defaultLocale = r.locale
	}
	if len(r.configured) > 0 {
		r.accepted = make(map[string]struct{}, len(r.configured)+2)
		for _, l := range r.configured {
			r.accepted[l] = struct{}{}
		}
		r.accepted[r.locale] = struct{}{}
		r.accepted[r.defaultLocale] = struct{}{}
	}
	r.acceptedList = r.buildLocalesList()
	r.cache = NewLRUCache[string, Value](r.cacheCapacity)

	if r.fallback == nil {
		r.fallback = func(namespace, key string) Value {
			return Text(joinKey(namespace, key))
		}
	}
	if r.report == nil {
		r.report = r.logReport
	}
	if r.registryFactory == nil {
		r.registryFactory = NewRegistry
	}
	if r.namespaceFactory == nil {
		r.namespaceFactory = NewNamespace
	}

	return r, nil
}

// WithLocale sets the initial current locale.
func WithLocale(locale string) Option {
	return func(r *Resolver) error {
		if locale == "" {
			return ErrEmptyLocale
		}
		r.locale = locale
		return nil
	}
}

// WithDefaultLocale sets the fallback locale consulted when the requested
// locale has no value for a key. Defaults to the initial locale.
func WithDefaultLocale(locale string) Option {
	return func(r *Resolver) error {
		if locale == "" {
			return ErrEmptyLocale
		}
		r.defaultLocale = locale
		return nil
	}
}

// WithLocales restricts ChangeLocale to the given set. The initial and
// default locales are always implicitly accepted. Without this option any
// non-empty locale is accepted.
func WithLocales(locales ...string) Option {
	return func(r *Resolver) error {
		for _, l := range locales {
			if l != "" {
				r.configured = append(r.configured, l)
			}
		}
		return nil
	}
}

// WithLocaleMatching enables best-match mapping in ChangeLocale: a requested
// locale outside the accepted set is matched against it using BCP 47
// language matching, and the nearest accepted locale is adopted instead of
// rejecting the change. Only meaningful together with WithLocales.
func WithLocaleMatching() Option {
	return func(r *Resolver) error {
		r.matching = true
		return nil
	}
}

// WithConfig applies cfg on top of the defaults. Zero-valued fields are
// ignored.
func WithConfig(cfg Config) Option {
	return func(r *Resolver) error {
		if cfg.Locale != "" {
			r.locale = cfg.Locale
		}
		if cfg.DefaultLocale != "" {
			r.defaultLocale = cfg.DefaultLocale
		}
		for _, l := range cfg.Locales {
			if l != "" {
				r.configured = append(r.configured, l)
			}
		}
		if cfg.CacheCapacity < 0 {
			return ErrNegativeCapacity
		}
		if cfg.CacheCapacity > 0 {
			r.cacheCapacity = cfg.CacheCapacity
		}
		return nil
	}
}

// WithReportFunc sets the error sink. The default sink logs reports through
// the configured logger at error level.
func WithReportFunc(fn ReportFunc) Option {
	return func(r *Resolver) error {
		if fn == nil {
			return ErrNilFunc
		}
		r.report = fn
		return nil
	}
}

// WithFallback sets the value supplier for unresolved keys rendered by T.
// The default renders the requested full key itself.
func WithFallback(fn FallbackFunc) Option {
	return func(r *Resolver) error {
		if fn == nil {
			return ErrNilFunc
		}
		r.fallback = fn
		return nil
	}
}

// WithLogger sets the structured logger. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// WithCacheCapacity bounds the resolution cache to n entries with least
// recently used eviction. Zero, the default, means unbounded.
func WithCacheCapacity(n int) Option {
	return func(r *Resolver) error {
		if n < 0 {
			return ErrNegativeCapacity
		}
		r.cacheCapacity = n
		return nil
	}
}

// WithRegistryFactory overrides how registries are constructed.
func WithRegistryFactory(fn RegistryFactory) Option {
	return func(r *Resolver) error {
		if fn == nil {
			return ErrNilFunc
		}
		r.registryFactory = fn
		return nil
	}
}

// WithNamespaceFactory overrides how namespace facades are constructed.
func WithNamespaceFactory(fn NamespaceFactory) Option {
	return func(r *Resolver) error {
		if fn == nil {
			return ErrNilFunc
		}
		r.namespaceFactory = fn
		return nil
	}
}

// Register creates the Registry owning fullNamespace, or returns the
// existing one: re-registering is a no-op success. Returns nil, after
// reporting through the error sink, when the path is malformed or collides
// with an existing key of an ancestor registry. Nothing is mutated on
// failure.
func (r *Resolver) Register(fullNamespace string) *Registry {
	r.mu.Lock()
	out := r.begin()
	reg := r.register(fullNamespace)
	r.end()
	r.mu.Unlock()
	out.flush(r)
	return reg
}

func (r *Resolver) register(fullNamespace string) *Registry {
	if !ValidPath(fullNamespace) {
		r.reportf(CodeInvalidNamespaceSyntax, "", fullNamespace, "invalid namespace %q", fullNamespace)
		return nil
	}
	if reg := r.tree.registryAt(fullNamespace); reg != nil {
		return reg
	}
	for _, sp := range keySplits(fullNamespace) {
		anc := r.tree.registryAt(sp.namespace)
		if anc == nil {
			continue
		}
		if key, found := anc.conflictingKey(sp.key); found {
			r.reportf(CodeNamespaceKeyIntersection, sp.namespace, key,
				"cannot register namespace %q: intersects key %q of namespace %q", fullNamespace, key, sp.namespace)
			return nil
		}
	}
	delete(r.unresolved, fullNamespace)
	reg := r.registryFactory(r, fullNamespace)
	r.tree.entry(fullNamespace).registry = reg
	r.logger.Debug("namespace registered", slog.String("namespace", fullNamespace))
	return reg
}

// Namespace returns the facade for path, creating it lazily. The facade is
// independent of registration: asking for it never creates a Registry.
// Returns nil, after reporting through the error sink, for a malformed path.
func (r *Resolver) Namespace(path string) *Namespace {
	r.mu.Lock()
	out := r.begin()
	n := r.namespaceAt(path)
	r.end()
	r.mu.Unlock()
	out.flush(r)
	return n
}

func (r *Resolver) namespaceAt(path string) *Namespace {
	if !ValidPath(path) {
		r.reportf(CodeInvalidNamespaceSyntax, "", path, "invalid namespace %q", path)
		return nil
	}
	e := r.tree.entry(path)
	if e.facade == nil {
		e.facade = r.namespaceFactory(r, path)
	}
	return e.facade
}

// Value resolves namespace.key (bare key when namespace is empty) under the
// current locale. A cache hit returns immediately; a key already known to be
// unresolved returns (nil, false) without searching or reporting again. A
// full search caches its result, or reports UnregisteredKey and remembers
// the key as unresolved when nothing was found and no cycle was the cause.
func (r *Resolver) Value(namespace, key string) (Value, bool) {
	fullKey := joinKey(namespace, key)

	r.mu.RLock()
	if v, ok := r.cache.Get(fullKey); ok {
		r.mu.RUnlock()
		return v, true
	}
	_, skip := r.unresolved[fullKey]
	r.mu.RUnlock()
	if skip {
		return nil, false
	}

	r.mu.Lock()
	out := r.begin()
	v, ok := r.lookup(namespace, key, fullKey)
	r.end()
	r.mu.Unlock()
	out.flush(r)
	return v, ok
}

// lookup runs the search for a cache miss. The fast-path state is checked
// again first since another goroutine may have won the lock upgrade.
func (r *Resolver) lookup(namespace, key, fullKey string) (Value, bool) {
	if v, ok := r.cache.Get(fullKey); ok {
		return v, true
	}
	if _, ok := r.unresolved[fullKey]; ok {
		return nil, false
	}

	ctx := newVisitContext(namespace, key)
	v, src := r.findValue(r.locale, fullKey, ctx)
	if v != nil {
		r.cache.Put(fullKey, v)
		r.logger.Debug("key resolved",
			slog.String("key", fullKey),
			slog.String("namespace", src.namespace),
			slog.String("locale", r.locale))
		return v, true
	}
	if !ctx.errored {
		r.reportf(CodeUnregisteredKey, namespace, key, "no value for key %q", fullKey)
	}
	r.unresolved[fullKey] = struct{}{}
	return nil, false
}

// T resolves and renders namespace.key under the current locale,
// substituting the fallback value when the key cannot be resolved, so the
// returned string never signals failure. Use Value for a presence check.
func (r *Resolver) T(namespace, key string, args ...M) string {
	if v, ok := r.Value(namespace, key); ok {
		return v.Render(args...)
	}
	return r.fallback(namespace, key).Render(args...)
}

// findValue is the recursive search. Every (ancestor namespace, suffix key)
// split of fullKey is tried shortest namespace first and the first present
// value wins. Borrow entries forward the search under the same visit
// context. A revisited (registry, key) pair flags the cycle, reports it, and
// skips that candidate; the remaining splits are still tried.
func (r *Resolver) findValue(locale, fullKey string, ctx *visitContext) (Value, *Registry) {
	for _, sp := range keySplits(fullKey) {
		reg := r.tree.registryAt(sp.namespace)
		if reg == nil {
			continue
		}
		if ctx.seen(reg, sp.key) {
			ctx.errored = true
			r.reportf(CodeCircularDependency, sp.namespace, sp.key,
				"circular dependency on %q while resolving %q", joinKey(sp.namespace, sp.key), ctx.origin())
			continue
		}
		ctx.mark(reg, sp.key)
		if v, src := reg.resolveLocal(locale, sp.key, ctx); v != nil {
			return v, src
		}
	}
	return nil, nil
}

// ChangeLocale switches the current locale and returns the locale in effect
// afterwards. An unaccepted locale is reported through the error sink and
// leaves the current locale unchanged. An accepted change clears the whole
// resolution cache (the unresolved set is locale-independent and survives)
// and notifies every locale subscriber.
func (r *Resolver) ChangeLocale(locale string) string {
	r.mu.Lock()
	out := r.begin()
	target, ok := r.acceptLocale(locale)
	switch {
	case !ok:
		r.reportf(CodeUnregisteredLocale, "", locale, "locale %q is not accepted", locale)
	case target != r.locale:
		r.locale = target
		r.cache.Clear()
		r.logger.Info("locale changed", slog.String("locale", target))
		r.notifier.emitLocale(target, &out.invocations)
	}
	current := r.locale
	r.end()
	r.mu.Unlock()
	out.flush(r)
	return current
}

// acceptLocale applies the acceptance predicate: any non-empty locale when
// unrestricted, set membership otherwise, with optional best-match mapping
// into the accepted set.
func (r *Resolver) acceptLocale(locale string) (string, bool) {
	if locale == "" {
		return "", false
	}
	if r.accepted == nil {
		return locale, true
	}
	if _, ok := r.accepted[locale]; ok {
		return locale, true
	}
	if r.matching {
		if match, ok := MatchLocale(locale, r.acceptedList); ok {
			return match, true
		}
	}
	return "", false
}

// Subscribe registers fn for events of the given kind at scope, a namespace
// path or ScopeAll. The returned token identifies the registration for
// Unsubscribe. A nil fn, empty scope, or unknown kind returns the zero
// Subscription.
func (r *Resolver) Subscribe(scope string, kind EventKind, fn ListenerFunc) Subscription {
	return r.subscribe(scope, kind, fn, false)
}

// SubscribeOnce is Subscribe with automatic removal after the first
// delivery.
func (r *Resolver) SubscribeOnce(scope string, kind EventKind, fn ListenerFunc) Subscription {
	return r.subscribe(scope, kind, fn, true)
}

func (r *Resolver) subscribe(scope string, kind EventKind, fn ListenerFunc, once bool) Subscription {
	if fn == nil || scope == "" || (kind != EventLocale && kind != EventKey) {
		return Subscription{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifier.subscribe(scope, kind, fn, once, false)
}

// Unsubscribe removes the subscription identified by token, reporting
// whether a live subscription was removed.
func (r *Resolver) Unsubscribe(token Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifier.unsubscribe(token)
}

// Locale returns the current locale.
func (r *Resolver) Locale() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locale
}

// DefaultLocale returns the fallback locale, fixed at construction.
func (r *Resolver) DefaultLocale() string {
	return r.defaultLocale
}

// Locales returns the accepted locales with the default locale first and
// the rest sorted alphabetically. Unrestricted resolvers return only the
// construction-time locales. The list is precomputed during construction.
func (r *Resolver) Locales() []string {
	return r.acceptedList
}

// Namespaces returns the sorted paths of every registered namespace.
func (r *Resolver) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree.names()
}

// Stats is a point-in-time snapshot of resolver state.
type Stats struct {
	Namespaces     int
	CachedKeys     int
	UnresolvedKeys int
	Subscriptions  int
}

// Stats returns counters describing the resolver's current state. The
// subscription count includes the internal borrow watches.
func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Namespaces:     r.tree.registered(),
		CachedKeys:     r.cache.Len(),
		UnresolvedKeys: len(r.unresolved),
		Subscriptions:  r.notifier.count(),
	}
}

// buildLocalesList precomputes the Locales result, default locale first and
// the rest sorted.
func (r *Resolver) buildLocalesList() []string {
	if r.accepted == nil {
		if r.locale != r.defaultLocale {
			return []string{r.defaultLocale, r.locale}
		}
		return []string{r.defaultLocale}
	}
	list := make([]string, 0, len(r.accepted))
	list = append(list, r.defaultLocale)
	others := make([]string, 0, len(r.accepted)-1)
	for l := range r.accepted {
		if l != r.defaultLocale {
			others = append(others, l)
		}
	}
	slices.Sort(others)
	return append(list, others...)
}

// outbox accumulates error reports and listener invocations raised while
// the write lock is held so both are delivered on the mutating goroutine
// after the lock is released. Listeners and sinks may therefore call back
// into the resolver freely. The emitted set records the keys announced
// during the call; a watch cascade stops at any key already in it.
type outbox struct {
	reports     []Report
	invocations []invocation
	emitted     map[string]struct{}
}

func (o *outbox) flush(r *Resolver) {
	for _, rep := range o.reports {
		r.report(rep)
	}
	for _, inv := range o.invocations {
		inv.fn(inv.ev)
	}
}

// begin installs a fresh outbox. The write lock must be held.
func (r *Resolver) begin() *outbox {
	r.out = &outbox{emitted: make(map[string]struct{})}
	return r.out
}

func (r *Resolver) end() {
	r.out = nil
}

func (r *Resolver) reportf(code Code, namespace, key, format string, args ...any) {
	r.out.reports = append(r.out.reports, Report{
		Code:      code,
		Namespace: namespace,
		Key:       key,
		Message:   fmt.Sprintf(format, args...),
	})
}

// invalidate clears cached and unresolved state for one full key.
func (r *Resolver) invalidate(fullKey string) {
	r.cache.Remove(fullKey)
	delete(r.unresolved, fullKey)
}

// emitKey announces a key change at most once per mutating call. Committed
// borrow watches can observe each other's keys even when every value still
// resolves, so cascades are bounded by the emitted set rather than by the
// shape of the watch graph.
func (r *Resolver) emitKey(fullKey string) {
	if _, done := r.out.emitted[fullKey]; done {
		return
	}
	r.out.emitted[fullKey] = struct{}{}
	r.notifier.emitKey(fullKey, &r.out.invocations)
}

// borrowTargetChanged runs inside the emitting call's lock when a watched
// borrow target changes: the borrowing key's cached state is dropped and
// its own change propagates downstream.
func (r *Resolver) borrowTargetChanged(fullKey string) {
	r.invalidate(fullKey)
	r.emitKey(fullKey)
}

// logReport is the default error sink.
func (r *Resolver) logReport(rep Report) {
	r.logger.Error("operation failed",
		slog.String("code", string(rep.Code)),
		slog.String("namespace", rep.Namespace),
		slog.String("key", rep.Key),
		slog.String("message", rep.Message),
	)
}
