package introspection

import (
	"sort"

	"github.com/jkarni/ndc-postgres/internal/catalog"
)

// implicitCasts maps a scalar type name to the sorted list of scalar type
// names that implicitly cast TO it. This is the substitution set used by
// operator cast extension: an argument declared as T may be replaced by
// any member of casts[T].
type implicitCasts map[string][]string

// resolveImplicitCasts keeps only casts that are implicit, between two
// distinct resolvable scalar types, and not on the denylist of
// semantically irrelevant coercions.
func resolveImplicitCasts(casts []catalog.Cast, class typeClassification, denylist []CastPair) implicitCasts {
	denied := make(map[CastPair]bool, len(denylist))
	for _, p := range denylist {
		denied[p] = true
	}

	seen := make(map[CastPair]bool)
	out := make(implicitCasts)
	for _, c := range casts {
		if c.Context != catalog.CastContextImplicit || c.Source == c.Target {
			continue
		}
		source, ok := class.scalars[c.Source]
		if !ok {
			continue
		}
		target, ok := class.scalars[c.Target]
		if !ok {
			continue
		}
		pair := CastPair{Source: source, Target: target}
		if denied[pair] || seen[pair] {
			continue
		}
		seen[pair] = true
		out[target] = append(out[target], source)
	}

	for _, sources := range out {
		sort.Strings(sources)
	}
	return out
}
