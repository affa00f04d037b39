package lexicon

import "github.com/google/uuid"

// ScopeAll subscribes a listener across every namespace scope.
const ScopeAll = "*"

// EventKind distinguishes the two notification kinds.
type EventKind string

const (
	// EventLocale fires after the current locale changes.
	EventLocale EventKind = "locale"
	// EventKey fires after a key mutation, once per affected ancestor
	// namespace scope per mutating call.
	EventKey EventKind = "key"
)

// Event is one delivered notification. Scope is the scope the receiving
// subscription was registered under. Locale carries the new locale for
// EventLocale events. Key carries the changed key relative to Scope for
// EventKey events; ScopeAll subscribers receive the full key.
type Event struct {
	Kind   EventKind
	Scope  string
	Locale string
	Key    string
}

// ListenerFunc handles a delivered event. Listeners run synchronously on
// the goroutine that performed the mutation, after the resolver's lock is
// released, so they may call back into the resolver.
type ListenerFunc func(Event)

// Subscription is the token identifying one listener registration. The zero
// value identifies nothing and unsubscribing it is a no-op.
type Subscription struct {
	id    uuid.UUID
	scope string
	kind  EventKind
}

func (s Subscription) active() bool { return s.id != uuid.Nil }

type listener struct {
	fn       ListenerFunc
	once     bool
	internal bool
}

// invocation pairs a snapshotted listener with its event so delivery can
// happen after the resolver's lock is released. Snapshotting at emit time
// guarantees a mutation is never replayed to a listener registered later.
type invocation struct {
	fn ListenerFunc
	ev Event
}

// notifier is the namespace-scoped publish/subscribe table, keyed
// scope, then kind, then subscription token. It is not safe for concurrent
// use on its own; the owning resolver serializes every call under its lock.
// Internal listeners (borrow watches) run inline at emit time so cache
// invalidation stays atomic with the mutation; external listeners are
// collected into the pending slice for post-unlock delivery.
type notifier struct {
	scopes map[string]map[EventKind]map[uuid.UUID]*listener
}

func newNotifier() *notifier {
	return &notifier{scopes: make(map[string]map[EventKind]map[uuid.UUID]*listener)}
}

func (n *notifier) subscribe(scope string, kind EventKind, fn ListenerFunc, once, internal bool) Subscription {
	kinds, ok := n.scopes[scope]
	if !ok {
		kinds = make(map[EventKind]map[uuid.UUID]*listener)
		n.scopes[scope] = kinds
	}
	subs, ok := kinds[kind]
	if !ok {
		subs = make(map[uuid.UUID]*listener)
		kinds[kind] = subs
	}
	id := uuid.New()
	subs[id] = &listener{fn: fn, once: once, internal: internal}
	return Subscription{id: id, scope: scope, kind: kind}
}

func (n *notifier) unsubscribe(sub Subscription) bool {
	subs := n.scopes[sub.scope][sub.kind]
	if _, ok := subs[sub.id]; !ok {
		return false
	}
	delete(subs, sub.id)
	return true
}

// emitKey delivers a key-changed event for fullKey: once per ancestor
// namespace scope with the key relative to that scope, then once to
// ScopeAll with the full key.
func (n *notifier) emitKey(fullKey string, pending *[]invocation) {
	for _, sp := range keySplits(fullKey) {
		n.deliver(sp.namespace, Event{Kind: EventKey, Scope: sp.namespace, Key: sp.key}, pending)
	}
	n.deliver(ScopeAll, Event{Kind: EventKey, Scope: ScopeAll, Key: fullKey}, pending)
}

// emitLocale delivers a locale-changed event to the locale listeners of
// every scope, ScopeAll included.
func (n *notifier) emitLocale(locale string, pending *[]invocation) {
	for scope := range n.scopes {
		n.deliver(scope, Event{Kind: EventLocale, Scope: scope, Locale: locale}, pending)
	}
}

func (n *notifier) deliver(scope string, ev Event, pending *[]invocation) {
	subs := n.scopes[scope][ev.Kind]
	for id, l := range subs {
		if l.once {
			delete(subs, id)
		}
		if l.internal {
			l.fn(ev)
		} else {
			*pending = append(*pending, invocation{fn: l.fn, ev: ev})
		}
	}
}

func (n *notifier) count() int {
	total := 0
	for _, kinds := range n.scopes {
		for _, subs := range kinds {
			total += len(subs)
		}
	}
	return total
}
