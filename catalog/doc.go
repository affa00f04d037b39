// Package catalog loads lexicon namespaces from YAML and JSON documents.
//
// A catalog document declares one namespace, its per-locale values as a
// nested key tree, and its borrows:
//
//	namespace: app
//	values:
//	  en:
//	    greeting: "Hello, %{name}!"
//	    buttons:
//	      save: Save
//	  de:
//	    greeting: "Hallo, %{name}!"
//	borrows:
//	  buttons.store: app.buttons.save
//
// Nested value trees are flattened into dot-notation keys, so the document
// above stores "greeting" and "buttons.save".
//
// # Loading
//
// Load walks any fs.FS, which makes embedded catalogs easy:
//
//	//go:embed catalogs
//	var catalogFS embed.FS
//
//	sub, _ := fs.Sub(catalogFS, "catalogs")
//	if err := catalog.Load(res, sub); err != nil {
//		log.Fatal(err)
//	}
//
// File and parse errors abort Load; failures of individual entries (key
// collisions, malformed keys) are reported through the resolver's error
// sink and do not stop the load.
//
// # Live Reload
//
// Watch blocks, reapplying documents in a directory as they change:
//
//	go func() {
//		if err := catalog.Watch(ctx, res, "./catalogs"); err != nil {
//			log.Printf("catalog watch stopped: %v", err)
//		}
//	}()
package catalog
