package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jackson-nestelroad/battler-go/internal/schema"
)

// Loader reads a data directory laid out as one subdirectory per effect
// kind (moves/, abilities/, items/, species/, conditions/, clauses/,
// formats/), each holding one JSON file per effect, and builds a Store
// (§6.2).
type Loader struct {
	Root string
}

func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// Load reads every subdirectory concurrently (grounded in the teacher's use
// of errgroup for fan-out I/O), then resolves `delegates` inheritance as a
// second pass once every effect template is in memory.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	store := NewStore()

	type loadJob struct {
		dir string
		fn  func(string, json.RawMessage) error
	}

	jobs := []loadJob{
		{"moves", func(id string, raw json.RawMessage) error {
			var m schema.MoveData
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
			m.ID = id
			store.Moves[id] = &m
			return nil
		}},
		{"abilities", func(id string, raw json.RawMessage) error {
			var a schema.AbilityData
			if err := json.Unmarshal(raw, &a); err != nil {
				return err
			}
			a.ID = id
			store.Abilities[id] = &a
			return nil
		}},
		{"items", func(id string, raw json.RawMessage) error {
			var it schema.ItemData
			if err := json.Unmarshal(raw, &it); err != nil {
				return err
			}
			it.ID = id
			store.Items[id] = &it
			return nil
		}},
		{"species", func(id string, raw json.RawMessage) error {
			var s schema.SpeciesData
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			s.ID = id
			store.SpeciesMap[id] = &s
			return nil
		}},
		{"conditions", func(id string, raw json.RawMessage) error {
			var c schema.ConditionData
			if err := json.Unmarshal(raw, &c); err != nil {
				return err
			}
			c.ID = id
			store.Conditions[id] = &c
			return nil
		}},
		{"clauses", func(id string, raw json.RawMessage) error {
			var c schema.ClauseData
			if err := json.Unmarshal(raw, &c); err != nil {
				return err
			}
			c.ID = id
			store.Clauses[id] = &c
			return nil
		}},
		{"formats", func(id string, raw json.RawMessage) error {
			var f schema.FormatData
			if err := json.Unmarshal(raw, &f); err != nil {
				return err
			}
			f.ID = id
			store.Formats[id] = &f
			return nil
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			return l.loadDir(gctx, job.dir, job.fn)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("data: loading %s: %w", l.Root, err)
	}

	resolveDelegates(store)
	return store, nil
}

// loadDir reads every *.json or *.yaml/*.yml file directly under root/dir
// and invokes fn with the file's basename (sans extension) as the effect
// ID. YAML files are authoring sugar: they're normalized to JSON before fn
// ever sees them, so every effect kind's unmarshal logic only has to know
// one wire format. A missing directory is not an error: not every format
// ships every effect kind.
func (l *Loader) loadDir(ctx context.Context, dir string, fn func(id string, raw json.RawMessage) error) error {
	full := filepath.Join(l.Root, dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", full, err)
	}
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(ext)]
		contents, err := os.ReadFile(filepath.Join(full, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading %s/%s: %w", dir, entry.Name(), err)
		}
		raw := json.RawMessage(contents)
		if ext != ".json" {
			var doc any
			if err := yaml.Unmarshal(contents, &doc); err != nil {
				return fmt.Errorf("parsing %s/%s: %w", dir, entry.Name(), err)
			}
			converted, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("normalizing %s/%s: %w", dir, entry.Name(), err)
			}
			raw = converted
		}
		if err := fn(id, raw); err != nil {
			return fmt.Errorf("parsing %s/%s: %w", dir, entry.Name(), err)
		}
	}
	return nil
}

// resolveDelegates copies a referenced effect's callback entries into the
// delegating effect wherever the delegating effect does not already define
// that event itself, implementing §4.2's "an effect template may delegate
// to another's callbacks, with its own entries taking precedence."
// References are "kind:id" pairs, e.g. "condition:brn".
func resolveDelegates(store *Store) {
	lookup := func(ref string) (schema.Callbacks, bool) {
		kind, id, ok := splitRef(ref)
		if !ok {
			return nil, false
		}
		switch kind {
		case "move":
			if m, ok := store.Moves[id]; ok {
				return m.Callbacks, true
			}
		case "ability":
			if a, ok := store.Abilities[id]; ok {
				return a.Callbacks, true
			}
		case "item":
			if it, ok := store.Items[id]; ok {
				return it.Callbacks, true
			}
		case "condition":
			if c, ok := store.Conditions[id]; ok {
				return c.Callbacks, true
			}
		}
		return nil, false
	}

	merge := func(dst schema.Callbacks, delegates []string) schema.Callbacks {
		if len(delegates) == 0 {
			return dst
		}
		if dst == nil {
			dst = make(schema.Callbacks)
		}
		for _, ref := range delegates {
			src, ok := lookup(ref)
			if !ok {
				continue
			}
			for event, spec := range src {
				if _, exists := dst[event]; !exists {
					dst[event] = spec
				}
			}
		}
		return dst
	}

	for _, m := range store.Moves {
		m.Callbacks = merge(m.Callbacks, m.Delegates)
	}
	for _, a := range store.Abilities {
		a.Callbacks = merge(a.Callbacks, a.Delegates)
	}
	for _, it := range store.Items {
		it.Callbacks = merge(it.Callbacks, it.Delegates)
	}
	for _, c := range store.Conditions {
		c.Callbacks = merge(c.Callbacks, c.Delegates)
	}
}

func splitRef(ref string) (kind, id string, ok bool) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == ':' {
			return ref[:i], ref[i+1:], true
		}
	}
	return "", "", false
}
