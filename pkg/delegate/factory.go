package delegate

import "github.com/noodles-go/noodles/pkg/noodleid"

// Factory constructs a fresh TableDelegate for a newly created Table
// component. The factory, not the delegate instance, is what user code
// registers at server construction, since every Table component needs
// its own delegate instance.
type Factory func() TableDelegate

// Factories maps noodleid.KindTable (today the only kind with a
// non-passive delegate) to the factory used for newly created
// components. It is intentionally keyed by Kind, not hardwired to Table
// alone, so a future delegated kind only needs an entry here.
type Factories map[noodleid.Kind]Factory

// DefaultFactories returns the built-in factory set: DefaultTableDelegate
// for Table, nothing for every other kind — for most kinds the delegate
// is a passive holder that needs no delegate object at all in this
// implementation.
func DefaultFactories() Factories {
	return Factories{
		noodleid.KindTable: func() TableDelegate { return NewDefaultTableDelegate() },
	}
}

// With returns a copy of f with kind's factory replaced,
// leaving f itself unmodified.
func (f Factories) With(kind noodleid.Kind, factory Factory) Factories {
	out := make(Factories, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[kind] = factory
	return out
}

// New builds a TableDelegate for kind, using f's factory if present or
// the built-in default otherwise.
func (f Factories) New(kind noodleid.Kind) TableDelegate {
	if factory, ok := f[kind]; ok {
		return factory()
	}
	return NewDefaultTableDelegate()
}
