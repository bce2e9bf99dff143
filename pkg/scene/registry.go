package scene

import (
	"sort"
	"sync"

	"github.com/noodles-go/noodles/pkg/ncerr"
	"github.com/noodles-go/noodles/pkg/noodleid"
)

// Entry is one live component returned by Get, Snapshot, and the By*
// lookups. Payload is always one of the value types in types.go (Method,
// Entity, Buffer, ...).
type Entry struct {
	ID      noodleid.ID
	Name    string
	Payload any
}

type record struct {
	name    string
	payload referencer
}

// snapshotOrder lists component kinds in an order that never puts a
// dependent ahead of a dependency, so a freshly introduced client can
// apply a snapshot as a linear sequence of creates without forward
// references. Method and Signal have no dependencies of their own and
// are listed first since Entity/Plot/Table reference them.
var snapshotOrder = []noodleid.Kind{
	noodleid.KindMethod,
	noodleid.KindSignal,
	noodleid.KindBuffer,
	noodleid.KindBufferView,
	noodleid.KindImage,
	noodleid.KindSampler,
	noodleid.KindTexture,
	noodleid.KindMaterial,
	noodleid.KindGeometry,
	noodleid.KindLight,
	noodleid.KindTable,
	noodleid.KindEntity,
	noodleid.KindPlot,
}

// Registry is the authoritative, in-process store of every live
// component. It is owned exclusively by the server event loop and is not
// safe for unsynchronized concurrent mutation from multiple goroutines,
// though its RWMutex lets read-only callers (e.g. telemetry) take a
// consistent snapshot without blocking the loop for long.
type Registry struct {
	mu sync.RWMutex

	allocators map[noodleid.Kind]*noodleid.Allocator
	live       map[noodleid.ID]*record
	byName     map[string][]noodleid.ID        // append-order; last entry wins
	reverse    map[noodleid.ID]map[noodleid.ID]bool // target -> set of referrers
}

// New builds an empty registry with one allocator per component kind.
func New() *Registry {
	r := &Registry{
		allocators: make(map[noodleid.Kind]*noodleid.Allocator, len(noodleid.AllKinds())),
		live:       make(map[noodleid.ID]*record),
		byName:     make(map[string][]noodleid.ID),
		reverse:    make(map[noodleid.ID]map[noodleid.ID]bool),
	}
	for _, k := range noodleid.AllKinds() {
		r.allocators[k] = noodleid.NewAllocator(k)
	}
	return r
}

func asReferencer(kind noodleid.Kind, payload any) (referencer, error) {
	ref, ok := payload.(referencer)
	if !ok {
		return nil, ncerr.InvalidArgument("%s: payload type %T does not implement the component contract", kind, payload)
	}
	return ref, nil
}

// Create allocates a new ID for kind, validates payload, and inserts it.
// name may be empty; unnamed components are simply absent from the name
// index.
func (r *Registry) Create(kind noodleid.Kind, name string, payload any) (noodleid.ID, error) {
	ref, err := asReferencer(kind, payload)
	if err != nil {
		return noodleid.Null, err
	}
	if err := validateFields(payload); err != nil {
		return noodleid.Null, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, target := range ref.refs() {
		if !r.aliveLocked(target) {
			return noodleid.Null, ncerr.InvalidArgument("%s: dangling reference to %s", kind, target)
		}
	}

	id := r.allocators[kind].Alloc()
	r.live[id] = &record{name: name, payload: ref}
	r.addReverseLocked(id, ref.refs())
	if name != "" {
		r.byName[name] = append(r.byName[name], id)
	}
	return id, nil
}

// Update replaces the payload of an existing, live component in place.
// The ID and name are unchanged; the payload's type must match the
// original kind.
func (r *Registry) Update(id noodleid.ID, payload any) error {
	ref, err := asReferencer(id.Kind, payload)
	if err != nil {
		return err
	}
	if err := validateFields(payload); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.live[id]
	if !ok {
		return ncerr.NotFound("%s: no such component", id)
	}
	for _, target := range ref.refs() {
		if !r.aliveLocked(target) {
			return ncerr.InvalidArgument("%s: dangling reference to %s", id, target)
		}
	}

	r.removeReverseLocked(id, rec.payload.refs())
	rec.payload = ref
	r.addReverseLocked(id, ref.refs())
	return nil
}

// Delete removes a live component, failing with CodeInUse if any other
// live component still references it.
func (r *Registry) Delete(id noodleid.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.live[id]
	if !ok {
		return ncerr.NotFound("%s: no such component", id)
	}
	if referrers := r.reverse[id]; len(referrers) > 0 {
		return ncerr.InUse("%s: still referenced by %d component(s)", id, len(referrers))
	}

	r.removeReverseLocked(id, rec.payload.refs())
	delete(r.live, id)
	delete(r.reverse, id)
	r.allocators[id.Kind].Free(id)

	if rec.name != "" {
		ids := r.byName[rec.name]
		for i, candidate := range ids {
			if candidate == id {
				ids = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(ids) == 0 {
			delete(r.byName, rec.name)
		} else {
			r.byName[rec.name] = ids
		}
	}
	return nil
}

// Get returns the live entry for id, or ok=false if id is stale or
// unknown.
func (r *Registry) Get(id noodleid.ID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.live[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{ID: id, Name: rec.name, Payload: rec.payload}, true
}

// Alive reports whether id currently refers to a live component.
func (r *Registry) Alive(id noodleid.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.aliveLocked(id)
}

func (r *Registry) aliveLocked(id noodleid.ID) bool {
	_, ok := r.live[id]
	return ok
}

// Referenced reports whether any other live component currently holds a
// reference to id (the same condition Delete enforces as CodeInUse).
func (r *Registry) Referenced(id noodleid.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reverse[id]) > 0
}

// IDsByKind returns every live ID of the given kind, in slot order.
func (r *Registry) IDsByKind(kind noodleid.Kind) []noodleid.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []noodleid.ID
	for id := range r.live {
		if id.Kind == kind {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// ByName returns the most-recently-created live component named name.
// Names are not unique; when multiple live components share a name, the
// most recently created one wins.
func (r *Registry) ByName(name string) (noodleid.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byName[name]
	if len(ids) == 0 {
		return noodleid.Null, false
	}
	return ids[len(ids)-1], true
}

// IDsByName returns every live component ever created with name, oldest
// first.
func (r *Registry) IDsByName(name string) []noodleid.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]noodleid.ID, len(r.byName[name]))
	copy(out, r.byName[name])
	return out
}

// Snapshot returns every live component in a dependency-safe order: a
// client that applies the returned entries as sequential CreateX messages
// never observes a forward reference.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.live))
	for _, kind := range snapshotOrder {
		ids := make([]noodleid.ID, 0)
		for id := range r.live {
			if id.Kind == kind {
				ids = append(ids, id)
			}
		}
		sortIDs(ids)
		for _, id := range ids {
			rec := r.live[id]
			out = append(out, Entry{ID: id, Name: rec.name, Payload: rec.payload})
		}
	}
	return out
}

func (r *Registry) addReverseLocked(from noodleid.ID, targets []noodleid.ID) {
	for _, t := range targets {
		set, ok := r.reverse[t]
		if !ok {
			set = make(map[noodleid.ID]bool)
			r.reverse[t] = set
		}
		set[from] = true
	}
}

func (r *Registry) removeReverseLocked(from noodleid.ID, targets []noodleid.ID) {
	for _, t := range targets {
		set, ok := r.reverse[t]
		if !ok {
			continue
		}
		delete(set, from)
		if len(set) == 0 {
			delete(r.reverse, t)
		}
	}
}

func sortIDs(ids []noodleid.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}
