package lexicon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lexicon"
)

type stringerValue struct {
	s string
}

func (v stringerValue) String() string { return v.s }

func TestSet(t *testing.T) {
	setup := func() (*lexicon.Resolver, *lexicon.Registry, *reportSink) {
		sink := &reportSink{}
		res, _ := lexicon.New(lexicon.WithReportFunc(sink.record))
		reg := res.Register("app")
		return res, reg, sink
	}

	t.Run("stores and resolves a value", func(t *testing.T) {
		res, reg, sink := setup()

		require.True(t, reg.Set("title", "Lexicon", "en"))
		assert.Equal(t, "Lexicon", res.T("app", "title"))
		assert.Empty(t, sink.all())
	})

	t.Run("stores under the current locale when locale is empty", func(t *testing.T) {
		sink := &reportSink{}
		res, err := lexicon.New(
			lexicon.WithReportFunc(sink.record),
			lexicon.WithLocale("de"),
		)
		require.NoError(t, err)
		reg := res.Register("app")

		require.True(t, reg.Set("title", "Wörterbuch", ""))
		v, ok := res.Value("app", "title")
		require.True(t, ok)
		assert.Equal(t, "Wörterbuch", v.Render())
	})

	t.Run("accepts Value and Stringer implementations", func(t *testing.T) {
		res, reg, _ := setup()

		require.True(t, reg.Set("literal", lexicon.Text("Hi %{name}"), ""))
		assert.Equal(t, "Hi %{name}", res.T("app", "literal", lexicon.M{"name": "Ada"}))

		require.True(t, reg.Set("stringy", stringerValue{s: "from stringer"}, ""))
		assert.Equal(t, "from stringer", res.T("app", "stringy"))
	})

	t.Run("reports malformed keys", func(t *testing.T) {
		_, reg, sink := setup()

		for _, key := range []string{"", ".", "a.", ".a", "a..b"} {
			assert.False(t, reg.Set(key, "x", ""), "key %q", key)
			assert.Equal(t, lexicon.CodeInvalidKeySyntax, sink.last().Code, "key %q", key)
		}
		assert.Empty(t, reg.Keys())
	})

	t.Run("reports unsupported value types", func(t *testing.T) {
		_, reg, sink := setup()

		assert.False(t, reg.Set("count", 42, ""))
		rep := sink.last()
		assert.Equal(t, lexicon.CodeInvalidValueType, rep.Code)
		assert.Contains(t, rep.Message, "unsupported value type")
		assert.Empty(t, reg.Keys())
	})

	t.Run("rejects a key that collides with a registered namespace", func(t *testing.T) {
		res, reg, sink := setup()
		require.NotNil(t, res.Register("app.errors"))

		assert.False(t, reg.Set("errors", "boom", ""))
		assert.Equal(t, lexicon.CodeKeyNamespaceIntersection, sink.last().Code)
		assert.Empty(t, reg.Keys())
	})

	t.Run("allows a key whose prefix is a registered namespace", func(t *testing.T) {
		res, reg, sink := setup()
		require.NotNil(t, res.Register("app.errors"))

		require.True(t, reg.Set("errors.required", "Required", ""))
		assert.Equal(t, "Required", res.T("app.errors", "required"))
		assert.Empty(t, sink.all())
	})

	t.Run("stores locales independently", func(t *testing.T) {
		res, reg, _ := setup()

		require.True(t, reg.Set("title", "Book", "en"))
		require.True(t, reg.Set("title", "Buch", "de"))

		assert.Equal(t, "Book", res.T("app", "title"))
		res.ChangeLocale("de")
		assert.Equal(t, "Buch", res.T("app", "title"))
	})

	t.Run("invalidates the cached value", func(t *testing.T) {
		res, reg, _ := setup()

		require.True(t, reg.Set("title", "Old", ""))
		assert.Equal(t, "Old", res.T("app", "title"))
		assert.Equal(t, 1, res.Stats().CachedKeys)

		require.True(t, reg.Set("title", "New", ""))
		assert.Equal(t, 0, res.Stats().CachedKeys)
		assert.Equal(t, "New", res.T("app", "title"))
	})

	t.Run("reactivates a key known to be unresolved", func(t *testing.T) {
		res, reg, sink := setup()

		_, ok := res.Value("app", "late")
		require.False(t, ok)
		assert.Equal(t, 1, res.Stats().UnresolvedKeys)

		require.True(t, reg.Set("late", "Here", ""))
		assert.Equal(t, 0, res.Stats().UnresolvedKeys)

		v, ok := res.Value("app", "late")
		require.True(t, ok)
		assert.Equal(t, "Here", v.Render())
		assert.Equal(t, []lexicon.Code{lexicon.CodeUnregisteredKey}, sink.codes())
	})

	t.Run("converts a borrow back to direct storage", func(t *testing.T) {
		res, _, sink := setup()
		he := res.Register("he")
		she := res.Register("she")
		require.True(t, he.Set("greeting", "Hello", ""))
		require.True(t, she.Use("greeting", "he.greeting"))
		assert.Equal(t, "Hello", res.T("she", "greeting"))
		assert.Equal(t, 1, res.Stats().Subscriptions)

		require.True(t, she.Set("greeting", "Own", ""))
		assert.Equal(t, 0, res.Stats().Subscriptions)
		assert.Equal(t, "Own", res.T("she", "greeting"))

		require.True(t, he.Set("greeting", "Changed", ""))
		assert.Equal(t, "Own", res.T("she", "greeting"))
		assert.Empty(t, sink.all())
	})
}

func TestUse(t *testing.T) {
	setup := func() (*lexicon.Resolver, *reportSink) {
		sink := &reportSink{}
		res, _ := lexicon.New(lexicon.WithReportFunc(sink.record))
		return res, sink
	}

	t.Run("borrows a key from another namespace", func(t *testing.T) {
		res, sink := setup()
		he := res.Register("he")
		she := res.Register("she")
		require.True(t, he.Set("says.hi", "Hello", ""))

		require.True(t, she.Use("says.hi", "he.says.hi"))
		assert.Equal(t, "Hello", res.T("she", "says.hi"))
		assert.Empty(t, sink.all())
	})

	t.Run("resolves borrows from the root namespace", func(t *testing.T) {
		res, sink := setup()
		he := res.Register("he")
		require.True(t, he.Set("says.hi", "Hi!", "en"))
		assert.Equal(t, "Hi!", res.T("", "he.says.hi"))

		require.True(t, he.Use("says.bye", "he.says.hi"))
		assert.Equal(t, "Hi!", res.T("", "he.says.bye"))
		assert.Empty(t, sink.all())
	})

	t.Run("resolves borrowed values through the current locale", func(t *testing.T) {
		res, _ := setup()
		he := res.Register("he")
		she := res.Register("she")
		require.True(t, he.Set("greeting", "Hello", "en"))
		require.True(t, he.Set("greeting", "Pryvit", "uk"))
		require.True(t, she.Use("greeting", "he.greeting"))

		assert.Equal(t, "Hello", res.T("she", "greeting"))
		res.ChangeLocale("uk")
		assert.Equal(t, "Pryvit", res.T("she", "greeting"))
	})

	t.Run("is a no-op for an identical re-borrow", func(t *testing.T) {
		res, sink := setup()
		he := res.Register("he")
		she := res.Register("she")
		require.True(t, he.Set("says.hi", "Hello", ""))
		require.True(t, she.Use("says.hi", "he.says.hi"))

		var events []lexicon.Event
		res.Subscribe(lexicon.ScopeAll, lexicon.EventKey, func(ev lexicon.Event) {
			events = append(events, ev)
		})

		require.True(t, she.Use("says.hi", "he.says.hi"))
		assert.Empty(t, events)
		assert.Equal(t, 2, res.Stats().Subscriptions)
		assert.Empty(t, sink.all())
	})

	t.Run("switches the watch on re-borrow", func(t *testing.T) {
		res, _ := setup()
		src := res.Register("src")
		app := res.Register("app")
		require.True(t, src.Set("one", "1", ""))
		require.True(t, src.Set("two", "2", ""))

		require.True(t, app.Use("k", "src.one"))
		assert.Equal(t, "1", res.T("app", "k"))

		require.True(t, app.Use("k", "src.two"))
		assert.Equal(t, "2", res.T("app", "k"))
		assert.Equal(t, 1, res.Stats().Subscriptions)

		require.True(t, src.Set("one", "1b", ""))
		assert.Equal(t, "2", res.T("app", "k"))

		require.True(t, src.Set("two", "2b", ""))
		assert.Equal(t, "2b", res.T("app", "k"))
	})

	t.Run("reports malformed paths", func(t *testing.T) {
		res, sink := setup()
		app := res.Register("app")

		assert.False(t, app.Use("a..b", "x.y"))
		assert.Equal(t, lexicon.CodeInvalidKeySyntax, sink.last().Code)

		assert.False(t, app.Use("k", "x..y"))
		assert.Equal(t, lexicon.CodeInvalidKeySyntax, sink.last().Code)

		assert.False(t, app.Use("k", "solo"))
		rep := sink.last()
		assert.Equal(t, lexicon.CodeInvalidKeySyntax, rep.Code)
		assert.Contains(t, rep.Message, "must contain a namespace")
	})

	t.Run("rejects borrowing itself", func(t *testing.T) {
		res, sink := setup()
		app := res.Register("app")

		assert.False(t, app.Use("k", "app.k"))
		rep := sink.last()
		assert.Equal(t, lexicon.CodeCircularDependency, rep.Code)
		assert.Contains(t, rep.Message, "cannot borrow itself")
	})

	t.Run("rejects a direct borrow cycle", func(t *testing.T) {
		res, sink := setup()
		ns := res.Register("ns")

		require.True(t, ns.Use("a", "ns.b"))
		assert.False(t, ns.Use("b", "ns.a"))
		rep := sink.last()
		assert.Equal(t, lexicon.CodeCircularDependency, rep.Code)
		assert.Contains(t, rep.Message, "circular dependency")

		_, ok := res.Value("ns", "a")
		assert.False(t, ok)
		assert.Equal(t, "ns.a", res.T("ns", "a"))
		assert.Equal(t, []lexicon.Code{
			lexicon.CodeCircularDependency,
			lexicon.CodeUnregisteredKey,
		}, sink.codes())
	})

	t.Run("rejects an indirect borrow cycle", func(t *testing.T) {
		res, sink := setup()
		alpha := res.Register("alpha")
		beta := res.Register("beta")
		gamma := res.Register("gamma")

		require.True(t, alpha.Use("k", "beta.k"))
		require.True(t, beta.Use("k", "gamma.k"))
		assert.False(t, gamma.Use("k", "alpha.k"))
		assert.Equal(t, lexicon.CodeCircularDependency, sink.last().Code)

		// The rejected link left gamma.k free for direct storage.
		require.True(t, gamma.Set("k", "done", ""))
		assert.Equal(t, "done", res.T("alpha", "k"))
	})

	t.Run("keeps the direct value when converting it to a borrow fails", func(t *testing.T) {
		res, sink := setup()
		alpha := res.Register("alpha")
		beta := res.Register("beta")
		gamma := res.Register("gamma")

		require.True(t, alpha.Use("v", "beta.v"))
		require.True(t, beta.Use("v", "gamma.v"))
		require.True(t, gamma.Use("v", "alpha.w"))
		require.True(t, alpha.Set("w", "Anchor", ""))
		assert.Equal(t, "Anchor", res.T("alpha", "v"))

		assert.False(t, alpha.Use("w", "alpha.v"))
		assert.Equal(t, []lexicon.Code{lexicon.CodeCircularDependency}, sink.codes())

		// alpha.w still holds its direct value and the chain still ends at it.
		assert.Equal(t, "Anchor", res.T("alpha", "w"))
		assert.Equal(t, "Anchor", res.T("alpha", "v"))
	})

	t.Run("rejects a target that is a registered namespace", func(t *testing.T) {
		res, sink := setup()
		app := res.Register("app")
		require.NotNil(t, res.Register("shop.banner"))

		assert.False(t, app.Use("k", "shop.banner"))
		rep := sink.last()
		assert.Equal(t, lexicon.CodeKeyNamespaceIntersection, rep.Code)
		assert.Contains(t, rep.Message, "registered namespace")
	})

	t.Run("rejects a borrowing key that collides with a registered namespace", func(t *testing.T) {
		res, sink := setup()
		app := res.Register("app")
		require.NotNil(t, res.Register("app.sub"))

		assert.False(t, app.Use("sub", "other.k"))
		assert.Equal(t, lexicon.CodeKeyNamespaceIntersection, sink.last().Code)
	})

	t.Run("propagates target changes to the borrowing key", func(t *testing.T) {
		res, sink := setup()
		he := res.Register("he")
		she := res.Register("she")
		require.True(t, he.Set("says.hi", "Hello", ""))
		require.True(t, she.Use("says.hi", "he.says.hi"))
		assert.Equal(t, "Hello", res.T("she", "says.hi"))

		require.True(t, he.Set("says.hi", "Hi", ""))
		assert.Equal(t, "Hi", res.T("she", "says.hi"))
		assert.Empty(t, sink.all())
	})

	t.Run("propagates through a chain of borrows", func(t *testing.T) {
		res, _ := setup()
		src := res.Register("src")
		mid := res.Register("mid")
		top := res.Register("top")
		require.True(t, src.Set("v", "one", ""))
		require.True(t, mid.Use("v", "src.v"))
		require.True(t, top.Use("v", "mid.v"))
		assert.Equal(t, "one", res.T("top", "v"))

		require.True(t, src.Set("v", "two", ""))
		assert.Equal(t, "two", res.T("top", "v"))
	})

	t.Run("notifies once per key when borrow watches observe each other", func(t *testing.T) {
		res, sink := setup()
		a := res.Register("a")
		ab := res.Register("a.b")
		ns := res.Register("ns")
		require.True(t, a.Set("b.c", "shadow", ""))

		// Both targets resolve through the direct value stored in "a", so
		// neither link closes a value cycle, yet each committed watch fires
		// on the other borrowing key.
		require.True(t, ab.Use("c", "ns.k"))
		require.True(t, ns.Use("k", "a.b.c"))
		assert.Empty(t, sink.all())
		assert.Equal(t, "shadow", res.T("ns", "k"))

		var keys []string
		res.Subscribe(lexicon.ScopeAll, lexicon.EventKey, func(ev lexicon.Event) {
			keys = append(keys, ev.Key)
		})

		require.True(t, a.Set("b.c", "updated", ""))
		assert.ElementsMatch(t, []string{"a.b.c", "ns.k"}, keys)
		assert.Equal(t, "updated", res.T("ns", "k"))
	})

	t.Run("resolves once a dangling target appears", func(t *testing.T) {
		res, sink := setup()
		he := res.Register("he")
		she := res.Register("she")

		require.True(t, she.Use("bye", "he.bye"))
		_, ok := res.Value("she", "bye")
		assert.False(t, ok)
		assert.Equal(t, []lexicon.Code{lexicon.CodeUnregisteredKey}, sink.codes())

		require.True(t, he.Set("bye", "Bye", ""))
		v, ok := res.Value("she", "bye")
		require.True(t, ok)
		assert.Equal(t, "Bye", v.Render())
	})
}

func TestKeys(t *testing.T) {
	t.Run("returns sorted local keys", func(t *testing.T) {
		res, _ := lexicon.New(lexicon.WithReportFunc(func(lexicon.Report) {}))
		reg := res.Register("app")
		require.True(t, reg.Set("b", "2", ""))
		require.True(t, reg.Set("a", "1", ""))
		require.True(t, reg.Set("c.x", "3", ""))
		require.True(t, reg.Use("z", "other.k"))

		assert.Equal(t, []string{"a", "b", "c.x", "z"}, reg.Keys())
	})

	t.Run("is empty for a fresh registry", func(t *testing.T) {
		res, _ := lexicon.New()
		assert.Empty(t, res.Register("app").Keys())
	})
}
