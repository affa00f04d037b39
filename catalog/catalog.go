package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/lexicon"
)

// Document is one catalog file: a namespace, its per-locale values, and its
// borrows. Values maps each locale to an arbitrarily nested key tree;
// nested maps flatten into dot-notation keys. Borrows maps local keys to
// the full keys they alias.
type Document struct {
	Namespace string                    `yaml:"namespace" json:"namespace"`
	Values    map[string]map[string]any `yaml:"values" json:"values"`
	Borrows   map[string]string         `yaml:"borrows" json:"borrows"`
}

// Load walks fsys and applies every catalog document in it. Supported
// extensions are .yaml, .yml, and .json. File access and parse failures
// abort the walk with an error; failures inside a document (rejected keys,
// collisions) flow through the resolver's error sink like any direct API
// call and do not stop the load.
func Load(res *lexicon.Resolver, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported(path.Ext(p)) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read catalog %s: %w", p, err)
		}
		doc, err := parseDocument(raw, path.Ext(p), p)
		if err != nil {
			return err
		}
		if err := Apply(res, doc); err != nil {
			return fmt.Errorf("catalog %s: %w", p, err)
		}
		return nil
	})
}

// Apply registers the document's namespace and drives its values and
// borrows through the resolver's public API. Only structural problems
// return an error; per-entry failures are reported through the resolver's
// error sink and skip just that entry.
func Apply(res *lexicon.Resolver, doc Document) error {
	if doc.Namespace == "" {
		return errors.New("catalog document has no namespace")
	}
	reg := res.Register(doc.Namespace)
	if reg == nil {
		return fmt.Errorf("namespace %q was rejected", doc.Namespace)
	}
	for locale, tree := range doc.Values {
		for key, value := range flatten(tree, "") {
			reg.Set(key, value, locale)
		}
	}
	for key, target := range doc.Borrows {
		reg.Use(key, target)
	}
	return nil
}

func supported(ext string) bool {
	switch ext {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func parseDocument(raw []byte, ext, name string) (Document, error) {
	var doc Document
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to parse catalog %s: %w", name, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to parse catalog %s: %w", name, err)
		}
	default:
		return Document{}, fmt.Errorf("unsupported catalog format %q", ext)
	}
	return doc, nil
}

// flatten recursively flattens a nested map into dot-notation keys.
// Non-string scalars are stringified.
func flatten(data map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = v
		case map[string]any:
			maps.Copy(result, flatten(v, fullKey))
		case map[string]string:
			for subKey, subVal := range v {
				result[fullKey+"."+subKey] = subVal
			}
		default:
			result[fullKey] = fmt.Sprintf("%v", v)
		}
	}

	return result
}
