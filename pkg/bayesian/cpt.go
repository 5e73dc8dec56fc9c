// Package bayesian implements the Bayesian-network engine behind the header
// and fingerprint generators: compressed conditional probability trees,
// categorical nodes, and a network supporting unconditional sampling,
// backtracking constrained sampling, and local constraint propagation.
package bayesian

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reserved keys of the persisted CPT tree format.
const (
	keyDeeper = "deeper"
	keySkip   = "skip"
)

// Distribution is a categorical distribution over string values. Values holds
// the keys in model-document order; weighted draws iterate it so that equal
// seeds replay identical samples.
type Distribution struct {
	Values []string
	Probs  map[string]float64
}

// hasMassOn reports whether the distribution places positive probability on
// at least one value in valid.
func (d *Distribution) hasMassOn(valid map[string]struct{}) bool {
	for v := range valid {
		if d.Probs[v] > 0 {
			return true
		}
	}
	return false
}

// Tree is one level of a node's conditional probability tree. A branch level
// descends by the next parent's value through deeper, or through skip when
// this parent's value is irrelevant on the current path. A leaf level holds
// the conditional distribution itself.
type Tree struct {
	deeper      map[string]*Tree
	deeperOrder []string
	skip        *Tree
	leaf        *Distribution
}

func (t *Tree) isBranch() bool {
	return t.deeper != nil || t.skip != nil
}

// parseTree decodes a persisted CPT tree. The decoder works at token level so
// that leaf key order survives into Distribution.Values, and ignores any key
// that is neither deeper, skip, nor a numeric leaf entry.
func parseTree(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeTree(dec)
}

func decodeTree(dec *json.Decoder) (*Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("conditional probability tree must be a JSON object")
	}

	t := &Tree{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in conditional probability tree", keyTok)
		}

		switch key {
		case keyDeeper:
			if err := decodeDeeper(dec, t); err != nil {
				return nil, err
			}
		case keySkip:
			child, err := decodeTree(dec)
			if err != nil {
				return nil, err
			}
			t.skip = child
		default:
			valueTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			if num, ok := valueTok.(json.Number); ok {
				prob, err := num.Float64()
				if err != nil {
					return nil, fmt.Errorf("probability of %q: %w", key, err)
				}
				t.addLeafEntry(key, prob)
				continue
			}
			// Unknown non-numeric keys are ignored, including any nested value.
			if err := skipValue(dec, valueTok); err != nil {
				return nil, err
			}
		}
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return t, nil
}

func decodeDeeper(dec *json.Decoder, t *Tree) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("deeper must be a JSON object keyed by parent values")
	}
	t.deeper = make(map[string]*Tree)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v under deeper", keyTok)
		}
		child, err := decodeTree(dec)
		if err != nil {
			return err
		}
		if _, exists := t.deeper[key]; !exists {
			t.deeperOrder = append(t.deeperOrder, key)
		}
		t.deeper[key] = child
	}
	_, err = dec.Token() // closing '}'
	return err
}

func (t *Tree) addLeafEntry(value string, prob float64) {
	if t.leaf == nil {
		t.leaf = &Distribution{Probs: make(map[string]float64)}
	}
	if _, exists := t.leaf.Probs[value]; !exists {
		t.leaf.Values = append(t.leaf.Values, value)
	}
	t.leaf.Probs[value] = prob
}

// skipValue consumes the already-started JSON value whose first token is tok.
func skipValue(dec *json.Decoder, tok json.Token) error {
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	for dec.More() {
		inner, err := dec.Token()
		if err != nil {
			return err
		}
		if err := skipValue(dec, inner); err != nil {
			return err
		}
	}
	_, err := dec.Token() // closing delimiter
	return err
}

// resolve walks the tree one level per parent, preferring deeper[value] and
// falling back to skip. A path the tree does not define resolves to nil,
// which callers treat as the empty distribution.
func (t *Tree) resolve(parentNames []string, assignment map[string]string) *Distribution {
	cur := t
	for _, parent := range parentNames {
		if cur == nil || !cur.isBranch() {
			return nil
		}
		value := assignment[parent]
		if next, ok := cur.deeper[value]; ok {
			cur = next
		} else if cur.skip != nil {
			cur = cur.skip
		} else {
			return nil
		}
	}
	if cur == nil || cur.leaf == nil {
		return nil
	}
	return cur.leaf
}

// pathStep records the choice made at one branch level during support
// enumeration: either a concrete parent value or a skip.
type pathStep struct {
	value   string
	skipped bool
}

// support enumerates every root-to-leaf path whose leaf places positive mass
// on at least one value in valid, and unions the parent values chosen at each
// level across those paths. A level reached only through skip stays empty and
// therefore constrains nothing.
func (t *Tree) support(valid map[string]struct{}, levels int) []*valueSet {
	sets := make([]*valueSet, levels)
	for i := range sets {
		sets[i] = newValueSet()
	}
	t.walkSupport(valid, sets, make([]pathStep, 0, levels))
	return sets
}

func (t *Tree) walkSupport(valid map[string]struct{}, sets []*valueSet, path []pathStep) {
	if len(path) == len(sets) {
		if t.leaf == nil || !t.leaf.hasMassOn(valid) {
			return
		}
		for i, step := range path {
			if !step.skipped {
				sets[i].add(step.value)
			}
		}
		return
	}
	for _, value := range t.deeperOrder {
		t.deeper[value].walkSupport(valid, sets, append(path, pathStep{value: value}))
	}
	if t.skip != nil {
		t.skip.walkSupport(valid, sets, append(path, pathStep{skipped: true}))
	}
}

// leafValues collects every value any leaf of the tree assigns probability to.
func (t *Tree) leafValues(into map[string]struct{}) {
	if t.leaf != nil {
		for _, v := range t.leaf.Values {
			into[v] = struct{}{}
		}
	}
	for _, child := range t.deeper {
		child.leafValues(into)
	}
	if t.skip != nil {
		t.skip.leafValues(into)
	}
}
