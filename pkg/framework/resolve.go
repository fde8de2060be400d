package framework

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/benchdef/pkg/errors"
)

// DefaultImageAuthor is the docker namespace used when an entry does not
// set one and no override is configured.
const DefaultImageAuthor = "automlbenchmark"

// Options configures resolution.
type Options struct {
	// ImageAuthor overrides the default docker image namespace.
	ImageAuthor string

	// ModulePrefix, when set, turns the module default into
	// prefix.name instead of the bare framework name.
	ModulePrefix string

	// Dirs maps setup command placeholders (input, output, user) to
	// directories. When set, {key} markers in setup_cmd are expanded.
	Dirs map[string]string
}

func (o *Options) setDefaults() {
	if o.ImageAuthor == "" {
		o.ImageAuthor = DefaultImageAuthor
	}
}

// Resolve turns a raw document into an immutable catalog of fully resolved
// definitions. It walks every entry's extends chain, merges inherited
// fields, applies defaults, and validates the result.
//
// Resolution is eager and fail-closed: every offending entry is reported in
// one aggregated error (sorted by entry name) and no catalog is returned.
// Template entries may be extended but do not appear in the catalog.
// Resolving the same document twice yields equal catalogs.
func Resolve(doc *Document, opts Options) (*Catalog, error) {
	opts.setDefaults()

	r := &resolver{
		entries:    doc.Entries,
		merged:     make(map[string]Entry, len(doc.Entries)),
		failed:     map[string]failure{},
		inProgress: map[string]bool{},
	}

	names := doc.EntryNames()
	checkFoldCollisions(names, r)

	defs := make(map[string]Definition, len(names))
	var catalogNames []string
	for _, name := range names {
		if _, broken := r.failed[name]; broken {
			continue
		}
		entry, err := r.resolveEntry(name)
		if err != nil {
			continue // recorded in r.failed
		}
		if entry.IsTemplate() {
			continue
		}
		def, err := finalize(entry, opts)
		if err != nil {
			r.failed[name] = failure{err: err, root: true}
			continue
		}
		defs[strings.ToLower(name)] = def
		catalogNames = append(catalogNames, name)
	}

	var errs errors.List
	for _, name := range slices.Sorted(maps.Keys(r.failed)) {
		if f := r.failed[name]; f.root {
			errs.Append(f.err)
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return newCatalog(defs, catalogNames, doc.Hash), nil
}

// checkFoldCollisions rejects entries whose names collide after case
// folding. Lookups are case-insensitive, so such entries would shadow each
// other. Single-file duplicates are caught at parse time; this covers
// collisions introduced by multi-file merges and mixed casing.
func checkFoldCollisions(names []string, r *resolver) {
	byFold := make(map[string]string, len(names))
	for _, name := range names {
		fold := strings.ToLower(name)
		if prev, ok := byFold[fold]; ok {
			err := errors.New(errors.ErrCodeMalformedEntry,
				"entry %q collides with %q, framework names are case-insensitive", name, prev)
			r.failed[name] = failure{err: err, root: true}
			continue
		}
		byFold[fold] = name
	}
}

type failure struct {
	err error
	// root marks the entry the failure is about. Entries that merely
	// inherit from a broken chain are excluded from the catalog but not
	// reported separately.
	root bool
}

type resolver struct {
	entries    map[string]Entry
	merged     map[string]Entry
	failed     map[string]failure
	inProgress map[string]bool
	stack      []string
}

// resolveEntry returns the entry with its full extends chain merged in,
// memoizing both successes and failures. Chains are walked depth-first
// with in-progress marking, so a chain that re-enters itself is reported
// as cyclic instead of recursing forever.
func (r *resolver) resolveEntry(name string) (Entry, error) {
	if entry, ok := r.merged[name]; ok {
		return entry, nil
	}
	if f, ok := r.failed[name]; ok {
		return Entry{}, f.err
	}
	if r.inProgress[name] {
		start := slices.Index(r.stack, name)
		path := append(slices.Clone(r.stack[start:]), name)
		err := errors.New(errors.ErrCodeCyclicExtends,
			"cyclic extends chain: %s", strings.Join(path, " -> "))
		r.failed[name] = failure{err: err, root: true}
		return Entry{}, err
	}

	entry := r.entries[name]
	if entry.Extends == "" {
		r.merged[name] = entry
		return entry, nil
	}
	if _, ok := r.entries[entry.Extends]; !ok {
		err := errors.New(errors.ErrCodeUnknownParent,
			"entry %q extends unknown framework %q", name, entry.Extends)
		r.failed[name] = failure{err: err, root: true}
		return Entry{}, err
	}

	r.inProgress[name] = true
	r.stack = append(r.stack, name)
	parent, err := r.resolveEntry(entry.Extends)
	delete(r.inProgress, name)
	r.stack = r.stack[:len(r.stack)-1]

	if err != nil {
		if _, exists := r.failed[name]; !exists {
			r.failed[name] = failure{err: err}
		}
		return Entry{}, err
	}

	merged := mergeEntries(parent, entry)
	r.merged[name] = merged
	return merged, nil
}

// mergeEntries overlays a child entry on its resolved parent. Scalars
// replace when the child sets them, params merge key-wise, and docker
// image coordinates merge field-wise. The child's name wins, the merged
// entry carries no extends, and abstractness is not inherited: extending
// a template yields a concrete entry.
func mergeEntries(parent, child Entry) Entry {
	merged := child
	merged.Extends = ""
	if merged.Version == "" {
		merged.Version = parent.Version
	}
	if merged.Module == "" {
		merged.Module = parent.Module
	}
	if merged.SetupArgs == nil {
		merged.SetupArgs = slices.Clone(parent.SetupArgs)
	}
	if merged.SetupCmd == "" {
		merged.SetupCmd = parent.SetupCmd
	}
	if merged.Project == "" {
		merged.Project = parent.Project
	}
	merged.Params = mergeParams(parent.Params, child.Params)
	merged.DockerImage = mergeDockerImage(parent.DockerImage, child.DockerImage)
	return merged
}

func mergeParams(parent, child map[string]any) map[string]any {
	if parent == nil && child == nil {
		return nil
	}
	merged := make(map[string]any, len(parent)+len(child))
	maps.Copy(merged, parent)
	maps.Copy(merged, child)
	return merged
}

func mergeDockerImage(parent, child DockerImage) DockerImage {
	merged := child
	if merged.Author == "" {
		merged.Author = parent.Author
	}
	if merged.Image == "" {
		merged.Image = parent.Image
	}
	if merged.Tag == "" {
		merged.Tag = parent.Tag
	}
	return merged
}

// finalize applies defaults to a merged entry and validates it. Defaults
// run after inheritance, so a child that never sets module gets its own
// name, not the parent's, and the image tag tracks the resolved version.
func finalize(entry Entry, opts Options) (Definition, error) {
	if err := errors.ValidateEntryName(entry.Name); err != nil {
		return Definition{}, errors.Wrap(errors.ErrCodeMalformedEntry, err,
			"entry %q has an invalid name", entry.Name)
	}
	if entry.Version == "" {
		return Definition{}, errors.New(errors.ErrCodeMissingVersion,
			"entry %q resolved without a version", entry.Name)
	}

	def := Definition{
		Name:        entry.Name,
		Version:     entry.Version,
		Module:      entry.Module,
		SetupArgs:   slices.Clone(entry.SetupArgs),
		SetupCmd:    entry.SetupCmd,
		Params:      cloneParams(entry.Params),
		Project:     entry.Project,
		DockerImage: entry.DockerImage,
	}
	if def.Module == "" {
		def.Module = def.Name
		if opts.ModulePrefix != "" {
			def.Module = opts.ModulePrefix + "." + def.Name
		}
	}
	if def.SetupArgs == nil {
		def.SetupArgs = []string{}
	}
	if def.Params == nil {
		def.Params = map[string]any{}
	}
	if def.DockerImage.Author == "" {
		def.DockerImage.Author = opts.ImageAuthor
	}
	if def.DockerImage.Image == "" {
		def.DockerImage.Image = strings.ToLower(def.Name)
	}
	if def.DockerImage.Tag == "" {
		def.DockerImage.Tag = strings.ToLower(def.Version)
	}
	if def.SetupCmd != "" && len(opts.Dirs) > 0 {
		def.SetupCmd = expandPlaceholders(def.SetupCmd, opts.Dirs)
	}
	return def, nil
}

// Load reads, parses, and resolves definitions from the given files or
// directories in one step.
func Load(opts Options, paths ...string) (*Catalog, error) {
	doc, err := LoadPaths(paths...)
	if err != nil {
		return nil, err
	}
	return Resolve(doc, opts)
}
