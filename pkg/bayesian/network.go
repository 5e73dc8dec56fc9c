package bayesian

import (
	"fmt"
	"sort"
)

// Network is an immutable Bayesian network: nodes in sampling order (every
// parent precedes its children) plus a by-name index. A loaded network may be
// shared freely across concurrent requests; all per-request state lives in
// the maps each call builds.
type Network struct {
	nodes  []*Node
	byName map[string]*Node
}

// New assembles a network from nodes already in sampling order and checks the
// structural invariants. Violations are reported as ErrMalformedModel.
func New(nodes []*Node) (*Network, error) {
	byName := make(map[string]*Node, len(nodes))
	for _, node := range nodes {
		if node.Name == "" {
			return nil, fmt.Errorf("%w: node with empty name", ErrMalformedModel)
		}
		if _, exists := byName[node.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate node %q", ErrMalformedModel, node.Name)
		}

		seen := make(map[string]struct{}, len(node.ParentNames))
		for _, parent := range node.ParentNames {
			if _, dup := seen[parent]; dup {
				return nil, fmt.Errorf("%w: node %q lists parent %q twice", ErrMalformedModel, node.Name, parent)
			}
			seen[parent] = struct{}{}
			if _, declared := byName[parent]; !declared {
				return nil, fmt.Errorf("%w: node %q depends on %q, which is not declared earlier in sampling order", ErrMalformedModel, node.Name, parent)
			}
		}

		if node.tree != nil {
			possible := make(map[string]struct{}, len(node.PossibleValues))
			for _, v := range node.PossibleValues {
				possible[v] = struct{}{}
			}
			leaves := make(map[string]struct{})
			node.tree.leafValues(leaves)
			for v := range leaves {
				if _, ok := possible[v]; !ok {
					return nil, fmt.Errorf("%w: node %q assigns probability to %q outside its possible values", ErrMalformedModel, node.Name, v)
				}
			}
		}

		byName[node.Name] = node
	}
	return &Network{nodes: nodes, byName: byName}, nil
}

// Nodes returns the nodes in sampling order. The slice is shared; callers
// must not modify it.
func (bn *Network) Nodes() []*Node {
	return bn.nodes
}

// Node looks a node up by name.
func (bn *Network) Node(name string) (*Node, bool) {
	node, ok := bn.byName[name]
	return node, ok
}

// Sample completes fixed into a full assignment by drawing every unbound node
// in sampling order. Pre-existing bindings are never resampled, even when
// they are inconsistent with the conditional tables; that contract belongs to
// the caller. Nodes whose conditional is undefined under the running
// assignment stay unbound.
func (bn *Network) Sample(fixed map[string]string) map[string]string {
	sample := make(map[string]string, len(bn.nodes)+len(fixed))
	for name, value := range fixed {
		sample[name] = value
	}
	for _, node := range bn.nodes {
		if _, bound := sample[node.Name]; bound {
			continue
		}
		if value, ok := node.Sample(sample); ok {
			sample[node.Name] = value
		}
	}
	return sample
}

// SampleConsistent searches for a complete sample in which every constrained
// node takes a whitelisted value. The search walks the sampling order
// depth-first with a banned set per level: a draw that no descendant can
// extend is banned and redrawn, and an exhausted level fails upward. The
// second return is false when no consistent assignment exists.
func (bn *Network) SampleConsistent(constraints map[string][]string) (map[string]string, bool) {
	assignment := make(map[string]string, len(bn.nodes))
	if len(bn.nodes) == 0 {
		return assignment, true
	}

	banned := make([]map[string]struct{}, len(bn.nodes))
	banned[0] = make(map[string]struct{})
	depth := 0
	for depth < len(bn.nodes) {
		node := bn.nodes[depth]
		allowed, constrained := constraints[node.Name]
		if !constrained {
			allowed = node.PossibleValues
		}

		value, ok := node.SampleRestricted(assignment, allowed, banned[depth])
		if ok {
			assignment[node.Name] = value
			depth++
			if depth < len(bn.nodes) {
				banned[depth] = make(map[string]struct{})
			}
			continue
		}

		if depth == 0 {
			return nil, false
		}
		depth--
		prev := bn.nodes[depth]
		banned[depth][assignment[prev.Name]] = struct{}{}
		delete(assignment, prev.Name)
	}
	return assignment, true
}

// PossibleValues propagates the given whitelists through the local
// conditional tables: each constrained node contributes its whitelist for
// itself and, per parent, the parent values that keep positive mass on the
// whitelist. Everything derived for the same node is intersected.
//
// The propagation is local: it soundly rules values out but does not perform
// belief propagation across siblings, so a non-failing result is a
// pre-filter, not a satisfiability proof. An empty whitelist, or an
// intersection that empties out, fails with ErrEmptyConstraint. Unknown node
// names impose nothing.
func (bn *Network) PossibleValues(constraints map[string][]string) (map[string][]string, error) {
	names := make([]string, 0, len(constraints))
	for name := range constraints {
		names = append(names, name)
	}
	sort.Strings(names)

	derived := make(map[string]*valueSet)
	merge := func(name string, values *valueSet) error {
		existing, ok := derived[name]
		if !ok {
			derived[name] = values
			return nil
		}
		existing.intersect(values)
		if existing.empty() {
			return fmt.Errorf("%w: no values left for node %q", ErrEmptyConstraint, name)
		}
		return nil
	}

	for _, name := range names {
		whitelist := constraints[name]
		if len(whitelist) == 0 {
			return nil, fmt.Errorf("%w: node %q", ErrEmptyConstraint, name)
		}
		node, known := bn.byName[name]
		if !known {
			continue
		}

		if err := merge(name, newValueSet(whitelist...)); err != nil {
			return nil, err
		}
		if node.tree == nil {
			continue
		}

		valid := make(map[string]struct{}, len(whitelist))
		for _, v := range whitelist {
			valid[v] = struct{}{}
		}
		levelSets := node.tree.support(valid, len(node.ParentNames))
		for i, parent := range node.ParentNames {
			if levelSets[i].empty() {
				continue // unanimous skip at this level constrains nothing
			}
			if err := merge(parent, levelSets[i]); err != nil {
				return nil, err
			}
		}
	}

	out := make(map[string][]string, len(derived))
	for name, set := range derived {
		out[name] = set.values()
	}
	return out, nil
}
