package compiler

import (
	"context"
	"reflect"
	"strconv"
	"sync/atomic"

	"github.com/sandrolain/gojunqi/pkg/loose"
)

// Item is a value flowing through a pipeline together with its scope.
type Item struct {
	Value interface{}
	Scope *Scope
}

// Grouped is the result tree of a group step. Interior levels map group
// keys to nested Grouped values; the last level maps keys to item lists.
// Entries keep the order in which their keys were first seen.
type Grouped struct {
	entries []*GroupEntry
	index   map[string]*GroupEntry
}

// GroupEntry is one key of a Grouped level.
type GroupEntry struct {
	// Key is the first key value that produced this entry.
	Key interface{}
	// Sub is the next level, nil on the last level.
	Sub *Grouped
	// Items are the members of a last-level entry.
	Items []*Item

	tag string
}

func newGrouped() *Grouped {
	return &Grouped{index: make(map[string]*GroupEntry)}
}

// entry returns the entry for tag, creating it at the end if needed.
func (g *Grouped) entry(tag string, key interface{}) *GroupEntry {
	if e, ok := g.index[tag]; ok {
		return e
	}
	e := &GroupEntry{Key: key, tag: tag}
	g.index[tag] = e
	g.entries = append(g.entries, e)
	return e
}

// Entries returns the entries of this level in first-seen order.
func (g *Grouped) Entries() []*GroupEntry {
	if g == nil {
		return nil
	}
	return g.entries
}

// Len returns the number of entries on this level.
func (g *Grouped) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}

// Depth returns the number of levels below and including g.
func (g *Grouped) Depth() int {
	depth := 0
	for cur := g; cur != nil; {
		depth++
		if len(cur.entries) == 0 {
			break
		}
		cur = cur.entries[0].Sub
	}
	return depth
}

// Values flattens the tree depth-first, visiting keys in first-seen order.
func (g *Grouped) Values() []interface{} {
	var out []interface{}
	g.walk(func(items []*Item) {
		for _, it := range items {
			out = append(out, it.Value)
		}
	})
	if out == nil {
		out = []interface{}{}
	}
	return out
}

// Values returns the plain values of a last-level entry.
func (e *GroupEntry) Values() []interface{} {
	return plainValues(e.Items)
}

func (g *Grouped) walk(fn func([]*Item)) {
	if g == nil {
		return
	}
	for _, e := range g.entries {
		if e.Sub != nil {
			e.Sub.walk(fn)
			continue
		}
		fn(e.Items)
	}
}

// mapLeaves returns a copy of g with fn applied to every leaf list. A
// stage that turns a leaf into a grouped result nests that result under
// the leaf's key.
func (g *Grouped) mapLeaves(ctx context.Context, ex *execution, fn seqFunc) (*Grouped, error) {
	out := &Grouped{
		entries: make([]*GroupEntry, 0, len(g.entries)),
		index:   make(map[string]*GroupEntry, len(g.entries)),
	}
	for _, e := range g.entries {
		ne := &GroupEntry{Key: e.Key, tag: e.tag}
		if e.Sub != nil {
			sub, err := e.Sub.mapLeaves(ctx, ex, fn)
			if err != nil {
				return nil, err
			}
			ne.Sub = sub
		} else {
			w, err := fn(ctx, ex, e.Items)
			if err != nil {
				return nil, err
			}
			if w.groups != nil {
				ne.Sub = w.groups
			} else {
				ne.Items = w.items
			}
		}
		out.entries = append(out.entries, ne)
		out.index[ne.tag] = ne
	}
	return out, nil
}

// identities assigns stable tags to objects and lists used as group keys
// during one execution. Tags come from a counter shared by every query of a
// compiler, so a tag is never handed out twice.
type identities struct {
	counter *atomic.Uint64
	tags    map[identityHandle]string
}

type identityHandle struct {
	ptr  uintptr
	len  int
	kind reflect.Kind
}

func newIdentities(counter *atomic.Uint64) *identities {
	return &identities{counter: counter}
}

// groupTag derives the partition tag for a key value. Primitives are keyed
// by their string form; objects and lists by identity.
func (ids *identities) groupTag(key interface{}) string {
	var h identityHandle
	switch x := key.(type) {
	case map[string]interface{}:
		h = identityHandle{ptr: reflect.ValueOf(x).Pointer(), kind: reflect.Map}
	case []interface{}:
		h = identityHandle{ptr: reflect.ValueOf(x).Pointer(), len: len(x), kind: reflect.Slice}
		if h.ptr == 0 || cap(x) == 0 {
			// Lists without storage have no identity (see loose.Identical),
			// so each use is its own key.
			return "#" + strconv.FormatUint(ids.counter.Add(1), 10)
		}
	default:
		return "=" + loose.ToString(key)
	}

	if ids.tags == nil {
		ids.tags = make(map[identityHandle]string)
	}
	if tag, ok := ids.tags[h]; ok {
		return tag
	}
	tag := "#" + strconv.FormatUint(ids.counter.Add(1), 10)
	ids.tags[h] = tag
	return tag
}
