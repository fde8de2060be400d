package framework

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genEntryName produces plausible framework names (mixed case, underscores).
func genEntryName() gopter.Gen {
	return gen.RegexMatch(`[A-Za-z][A-Za-z0-9_]{0,12}`)
}

func genVersion() gopter.Gen {
	return gen.RegexMatch(`[0-9]\.[0-9]{1,2}\.[0-9]{1,2}`)
}

// genBaseEntry builds a standalone entry without extends.
func genBaseEntry() gopter.Gen {
	return gopter.CombineGens(
		genEntryName(),
		genVersion(),
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
	).Map(func(vals []interface{}) Entry {
		params := map[string]any{}
		for k, v := range vals[2].(map[string]string) {
			params[k] = v
		}
		return Entry{
			Name:    vals[0].(string),
			Version: vals[1].(string),
			Params:  params,
		}
	})
}

func docFromEntries(entries []Entry) *Document {
	doc := &Document{Entries: map[string]Entry{}, Hash: "prop"}
	seen := map[string]bool{}
	for _, e := range entries {
		fold := toFold(e.Name)
		if seen[fold] {
			continue
		}
		seen[fold] = true
		doc.Entries[e.Name] = e
	}
	return doc
}

func toFold(name string) string {
	return strings.ToLower(name)
}

func TestResolveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genDoc := gen.SliceOfN(5, genBaseEntry()).Map(docFromEntries)

	properties.Property("resolution is idempotent", prop.ForAll(
		func(doc *Document) bool {
			first, err := Resolve(doc, Options{})
			if err != nil {
				return false
			}
			second, err := Resolve(doc, Options{})
			if err != nil {
				return false
			}
			return reflect.DeepEqual(first.Definitions(), second.Definitions())
		},
		genDoc,
	))

	properties.Property("defaults are always filled in", prop.ForAll(
		func(doc *Document) bool {
			catalog, err := Resolve(doc, Options{})
			if err != nil {
				return false
			}
			for _, def := range catalog.Definitions() {
				if def.Version == "" || def.Module == "" {
					return false
				}
				if def.SetupArgs == nil || def.Params == nil {
					return false
				}
				if def.DockerImage.Author == "" || def.DockerImage.Image == "" || def.DockerImage.Tag == "" {
					return false
				}
				if def.DockerImage.Image != toFold(def.Name) {
					// image default is lowercase(name); an explicit image
					// never appears in these generated entries
					return false
				}
			}
			return true
		},
		genDoc,
	))

	properties.Property("every entry is retrievable by its folded name", prop.ForAll(
		func(doc *Document) bool {
			catalog, err := Resolve(doc, Options{})
			if err != nil {
				return false
			}
			for _, name := range catalog.Names() {
				if _, ok := catalog.Get(toFold(name)); !ok {
					return false
				}
			}
			return catalog.Len() == len(doc.Entries)
		},
		genDoc,
	))

	properties.Property("child params win key-wise over any parent", prop.ForAll(
		func(doc *Document, childName string) bool {
			parentName := pickEntryName(doc)
			if parentName == "" || toFold(childName) == toFold(parentName) {
				return true // vacuous combination, nothing to check
			}
			if _, taken := doc.Entries[childName]; taken {
				return true
			}
			parent := doc.Entries[parentName]

			child := Entry{Name: childName, Extends: parentName, Params: map[string]any{}}
			var overridden string
			for k := range parent.Params {
				child.Params[k] = "child-wins"
				overridden = k
				break
			}
			child.Params["child-only"] = "extra"

			extended := &Document{Entries: map[string]Entry{}, Hash: doc.Hash}
			for name, entry := range doc.Entries {
				if toFold(name) == toFold(childName) {
					continue
				}
				extended.Entries[name] = entry
			}
			extended.Entries[childName] = child

			catalog, err := Resolve(extended, Options{})
			if err != nil {
				return false
			}
			def, ok := catalog.Get(childName)
			if !ok {
				return false
			}
			if def.Params["child-only"] != "extra" {
				return false
			}
			if overridden != "" && def.Params[overridden] != "child-wins" {
				return false
			}
			// Inherited keys survive the merge.
			for k, v := range parent.Params {
				if k == overridden {
					continue
				}
				if !reflect.DeepEqual(def.Params[k], v) {
					return false
				}
			}
			return def.Version == parent.Version
		},
		genDoc,
		genEntryName(),
	))

	properties.TestingRun(t)
}

func pickEntryName(doc *Document) string {
	names := doc.EntryNames()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
