package bayesian

import "math/rand"

// Node is a single categorical variable in the network: a name, its parents
// in CPT nesting order, the values it can take, and the conditional
// probability tree resolving a distribution for any parent assignment.
//
// Sampling never fails loudly: an undefined conditional or an exhausted
// candidate set yields no value, and the network search backtracks around it.
type Node struct {
	Name           string
	ParentNames    []string
	PossibleValues []string

	tree *Tree
	rng  *rand.Rand
}

// SetRand injects a seeded PRNG used for this node's draws. Without one the
// node draws from the shared package-level source, which is safe for
// concurrent use but not replayable.
func (n *Node) SetRand(rng *rand.Rand) {
	n.rng = rng
}

func (n *Node) uniform() float64 {
	if n.rng != nil {
		return n.rng.Float64()
	}
	return rand.Float64()
}

// ProbabilitiesGiven returns the conditional distribution of the node under
// the given parent assignment, or nil when the tree defines no conditional
// for it.
func (n *Node) ProbabilitiesGiven(parentValues map[string]string) *Distribution {
	if n.tree == nil {
		return nil
	}
	return n.tree.resolve(n.ParentNames, parentValues)
}

// Sample draws a value from the conditional distribution given the parent
// assignment. The second return is false when the distribution is empty.
func (n *Node) Sample(parentValues map[string]string) (string, bool) {
	dist := n.ProbabilitiesGiven(parentValues)
	if dist == nil || len(dist.Values) == 0 {
		return "", false
	}
	return n.draw(dist.Values, dist.Probs)
}

// SampleRestricted draws like Sample but only from allowed values that carry
// positive conditional mass and are not banned. A nil allowed slice means
// unrestricted. An empty candidate set yields no value rather than an error.
func (n *Node) SampleRestricted(parentValues map[string]string, allowed []string, banned map[string]struct{}) (string, bool) {
	dist := n.ProbabilitiesGiven(parentValues)
	if dist == nil {
		return "", false
	}

	var allowedSet map[string]struct{}
	if allowed != nil {
		allowedSet = make(map[string]struct{}, len(allowed))
		for _, v := range allowed {
			allowedSet[v] = struct{}{}
		}
	}

	candidates := make([]string, 0, len(dist.Values))
	for _, v := range dist.Values {
		if dist.Probs[v] <= 0 {
			continue
		}
		if allowedSet != nil {
			if _, ok := allowedSet[v]; !ok {
				continue
			}
		}
		if _, ok := banned[v]; ok {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return "", false
	}
	return n.draw(candidates, dist.Probs)
}

// draw performs the weighted draw: a uniform anchor scaled to the candidates'
// total mass, returned at the first value whose cumulative mass exceeds it.
// Candidates are visited in distribution order, so the draw is deterministic
// for a given PRNG state.
func (n *Node) draw(values []string, probs map[string]float64) (string, bool) {
	total := 0.0
	for _, v := range values {
		total += probs[v]
	}
	if total <= 0 {
		return "", false
	}

	anchor := n.uniform() * total
	cumulative := 0.0
	for _, v := range values {
		cumulative += probs[v]
		if cumulative > anchor {
			return v, true
		}
	}
	// Floating-point accumulation can land a hair short of total.
	return values[len(values)-1], true
}
