// Package resolver expands fragment composition references into flat,
// ordered member lists, detecting cycles and missing targets.
package resolver

import (
	"fmt"

	"github.com/jacoelho/ndschema/errors"
	"github.com/jacoelho/ndschema/internal/fragment"
)

// Lookup returns the fragment registered under name. A nil fragment with a
// nil error means the name is unknown; a non-nil error means the lookup
// itself failed (for example a lazy load from a backing filesystem).
type Lookup func(name string) (*fragment.Fragment, error)

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

type resolution struct {
	lookup Lookup
	states map[string]visitState
	chain  []string
	// expanded memoizes fully-resolved member lists so shared references
	// are expanded once.
	expanded map[string][]fragment.Member
}

// Resolve expands every reference in the fragment's composition list,
// substituting each referenced fragment's own resolved members in place.
// Order is preserved left-to-right because composition is order-sensitive.
// Resolving an already-resolved fragment returns it unchanged.
func Resolve(frag *fragment.Fragment, lookup Lookup) (*fragment.Fragment, error) {
	if frag == nil {
		return nil, fmt.Errorf("resolve: nil fragment")
	}
	if frag.Resolved() {
		return frag, nil
	}
	if lookup == nil {
		return nil, fmt.Errorf("resolve %s: nil lookup", frag.ID)
	}

	r := &resolution{
		lookup:   lookup,
		states:   make(map[string]visitState),
		expanded: make(map[string][]fragment.Member),
	}
	members, err := r.expand(frag)
	if err != nil {
		return nil, err
	}

	return &fragment.Fragment{
		ID:      frag.ID,
		Schema:  frag.Schema,
		URI:     frag.URI,
		Members: members,
	}, nil
}

func (r *resolution) expand(frag *fragment.Fragment) ([]fragment.Member, error) {
	r.states[frag.ID] = stateVisiting
	r.chain = append(r.chain, frag.ID)

	members := make([]fragment.Member, 0, len(frag.Members))
	for _, m := range frag.Members {
		if !m.IsRef() {
			members = append(members, m)
			continue
		}

		switch r.states[m.Ref] {
		case stateVisiting:
			chain := make([]string, len(r.chain), len(r.chain)+1)
			copy(chain, r.chain)
			return nil, &errors.CyclicReferenceError{Chain: append(chain, m.Ref)}
		case stateDone:
			members = append(members, r.expanded[m.Ref]...)
			continue
		}

		target, err := r.lookup(m.Ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: reference %s: %w", frag.ID, m.Ref, err)
		}
		if target == nil {
			return nil, &errors.UnresolvedReferenceError{Fragment: frag.ID, Ref: m.Ref}
		}

		sub, err := r.expand(target)
		if err != nil {
			return nil, err
		}
		members = append(members, sub...)
	}

	r.states[frag.ID] = stateDone
	r.expanded[frag.ID] = members
	r.chain = r.chain[:len(r.chain)-1]
	return members, nil
}
