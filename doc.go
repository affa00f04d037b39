// Package lexicon resolves dotted keys to locale-specific values across a
// tree of independently registered namespaces.
//
// Each namespace owns a flat table of keys. A key either stores values
// directly, one per locale, or borrows another full key anywhere in the
// tree. Resolution searches every ancestor namespace of the requested key,
// follows borrow links recursively with runtime cycle detection, applies
// locale fallback, and caches the outcome until a mutation or locale change
// invalidates it. Failures never surface as errors or panics; they are
// reported through a configurable error sink.
//
// # Basic Usage
//
// Create a resolver, register a namespace, and store values:
//
//	import "github.com/dmitrymomot/lexicon"
//
//	res, err := lexicon.New(
//		lexicon.WithLocale("en"),
//		lexicon.WithLocales("en", "de"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	app := res.Register("app")
//	app.Set("greeting", "Hello, %{name}!", "en")
//	app.Set("greeting", "Hallo, %{name}!", "de")
//
//	msg := res.T("app", "greeting", lexicon.M{"name": "John"})
//	// Output: "Hello, John!"
//
//	res.ChangeLocale("de")
//	msg = res.T("app", "greeting", lexicon.M{"name": "John"})
//	// Output: "Hallo, John!"
//
// Values are stored as %{name} templates by default; use lexicon.Text for
// literal storage without placeholder substitution.
//
// # Namespaces and Keys
//
// Namespaces are dotted paths registered independently; keys are dotted
// paths local to their namespace. The same full key can therefore be served
// by different namespace splits, and resolution tries each registered
// ancestor from the most general to the most specific:
//
//	res.Register("settings")
//	res.Register("settings.profile")
//
//	res.Register("settings").Set("profile.title", "Settings", "en")
//	// "settings.profile.title" resolves through the "settings" registry.
//
// A namespace may not collide with an existing key path and a key may not
// land exactly on a registered namespace; violations are reported and the
// operation is rejected without mutating anything.
//
// # Borrowing
//
// A key can alias another full key instead of storing values. Borrows
// resolve through the live target, so upstream changes are visible
// immediately, and cyclic borrow graphs are rejected at link time:
//
//	he := res.Register("he")
//	he.Set("says.hi", "Hi!", "en")
//	he.Use("says.bye", "he.says.hi")
//
//	res.T("", "he.says.bye")
//	// Output: "Hi!"
//
// # Locale Fallback
//
// A direct entry picks the requested locale first, then the default locale,
// then any remaining locale. Empty values count as absent. When a key
// cannot be resolved at all, T renders the fallback value, by default the
// requested key itself:
//
//	res.T("app", "missing.key")
//	// Output: "app.missing.key"
//
// # Change Notifications
//
// Subscribe to locale changes or key changes per namespace scope, or to
// every scope with ScopeAll. Key events deliver the changed key relative to
// the subscriber's scope. Listeners run synchronously on the mutating
// goroutine, after the resolver's internal lock is released:
//
//	token := res.Subscribe("app", lexicon.EventKey, func(ev lexicon.Event) {
//		log.Printf("key changed: %s", ev.Key)
//	})
//	defer res.Unsubscribe(token)
//
// # Error Reporting
//
// Invalid input, collisions, unresolved keys, and borrow cycles produce
// structured Reports delivered to the error sink. The default sink logs
// them; install your own to collect or fail hard:
//
//	res, _ := lexicon.New(
//		lexicon.WithReportFunc(func(rep lexicon.Report) {
//			log.Printf("%s: %s", rep.Code, rep.Message)
//		}),
//	)
//
// # Configuration
//
// Config supports environment-based setup with LEXICON_* variables:
//
//	cfg, err := lexicon.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := lexicon.New(lexicon.WithConfig(cfg))
//
// # Concurrency
//
// All exported methods are safe for concurrent use. Mutations are
// serialized by one write lock per resolver; lookups share a read lock on
// the cache fast path.
package lexicon
