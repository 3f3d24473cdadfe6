package introspection

import (
	"sort"
	"strings"

	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// baseOperator is one operator definition before cast extension: a true
// infix operator or an allow-listed boolean function treated as a prefix
// operator. Argument types are scalar type names.
type baseOperator struct {
	Name    string
	Arg1    string
	Arg2    string
	IsInfix bool
}

// operatorVariant is a base operator with zero or more of its argument
// types replaced by a type that implicitly casts to the declared one.
type operatorVariant struct {
	op              baseOperator
	arg1            string
	arg2            string
	arg1Substituted bool
	arg2Substituted bool
}

// resolveComparisonOperators runs the operator resolution pipeline:
// collect base operators, extend them through implicit casts on both
// argument positions, then deterministically keep exactly one definition
// per (exposed operator name, first-argument type) pair.
func resolveComparisonOperators(snap *catalog.Snapshot, class typeClassification, casts implicitCasts, opts Options) metadata.ComparisonOperators {
	base := collectBaseOperators(snap, class, opts.AllowedComparisonFunctions)
	variants := extendThroughCasts(base, casts)
	selected := selectVariants(variants)

	exposedNames := make(map[string]string, len(opts.ComparisonOperatorMappings))
	for _, m := range opts.ComparisonOperatorMappings {
		exposedNames[m.OperatorName] = m.ExposedName
	}

	out := metadata.ComparisonOperators{}
	for _, v := range selected {
		exposed := v.op.Name
		if v.op.IsInfix {
			name, ok := exposedNames[v.op.Name]
			if !ok {
				// an infix operator with no configured exposure name
				// is simply not exposed
				continue
			}
			exposed = name
		}
		if out[v.arg1] == nil {
			out[v.arg1] = make(map[string]metadata.ComparisonOperator)
		}
		out[v.arg1][exposed] = metadata.ComparisonOperator{
			OperatorName: v.op.Name,
			OperatorKind: operatorKind(exposed),
			ArgumentType: v.arg2,
			IsInfix:      v.op.IsInfix,
		}
	}
	return out
}

// collectBaseOperators unifies the two operator sources: true infix
// operators with a boolean result, and allow-listed two-argument,
// non-variadic, no-default-argument functions returning boolean. Operators
// whose argument types do not resolve to scalars are dropped.
func collectBaseOperators(snap *catalog.Snapshot, class typeClassification, allowedFunctions []string) []baseOperator {
	boolOID := findBoolType(snap)
	if boolOID == 0 {
		return nil
	}

	var base []baseOperator

	for _, op := range snap.Operators {
		if op.Kind != "b" || op.Result != boolOID {
			continue
		}
		arg1, ok := class.scalars[op.Left]
		if !ok {
			continue
		}
		arg2, ok := class.scalars[op.Right]
		if !ok {
			continue
		}
		base = append(base, baseOperator{Name: op.Name, Arg1: arg1, Arg2: arg2, IsInfix: true})
	}

	allowed := stringSet(allowedFunctions)
	for _, p := range snap.Procs {
		if !allowed[p.Name] || p.Kind != catalog.ProcKindFunction {
			continue
		}
		if len(p.ArgTypes) != 2 || p.Variadic != 0 || p.NumArgDefaults != 0 {
			continue
		}
		if p.ReturnType != boolOID {
			continue
		}
		arg1, ok := class.scalars[p.ArgTypes[0]]
		if !ok {
			continue
		}
		arg2, ok := class.scalars[p.ArgTypes[1]]
		if !ok {
			continue
		}
		base = append(base, baseOperator{Name: p.Name, Arg1: arg1, Arg2: arg2, IsInfix: false})
	}

	return base
}

// extendThroughCasts generates, for each base operator (A1, A2), every
// variant obtained by independently substituting A1 and/or A2 with a type
// that implicitly casts to it: unsubstituted, A1-substituted,
// A2-substituted, and both. Only direct casts are applied, never
// transitive chains, so re-running extension on its own output is a
// no-op.
func extendThroughCasts(base []baseOperator, casts implicitCasts) []operatorVariant {
	var variants []operatorVariant
	for _, op := range base {
		arg1Choices := append([]string{op.Arg1}, casts[op.Arg1]...)
		arg2Choices := append([]string{op.Arg2}, casts[op.Arg2]...)
		for i, arg1 := range arg1Choices {
			for j, arg2 := range arg2Choices {
				variants = append(variants, operatorVariant{
					op:              op,
					arg1:            arg1,
					arg2:            arg2,
					arg1Substituted: i > 0,
					arg2Substituted: j > 0,
				})
			}
		}
	}
	return variants
}

// selectVariants partitions the variants by (operator name, final
// first-argument type) and keeps the minimum of each partition under
// compareVariants. The result is sorted for deterministic iteration.
func selectVariants(variants []operatorVariant) []operatorVariant {
	type key struct {
		name string
		arg1 string
	}
	best := make(map[key]operatorVariant)
	for _, v := range variants {
		k := key{v.op.Name, v.arg1}
		current, ok := best[k]
		if !ok || compareVariants(v, current) < 0 {
			best[k] = v
		}
	}

	out := make([]operatorVariant, 0, len(best))
	for _, v := range best {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].op.Name != out[j].op.Name {
			return out[i].op.Name < out[j].op.Name
		}
		return out[i].arg1 < out[j].arg1
	})
	return out
}

// compareVariants is the five-tier preference order for picking one
// operator definition per (operator, first-argument type) partition. It is
// a strict total order over any partition: the tiers are ordinal, and the
// final tier compares second-argument type names, which the catalog
// guarantees unique.
//
//  1. unsubstituted on both arguments, with equal argument types
//  2. unsubstituted on both arguments
//  3. first argument substituted, second argument equal to the declared
//     first-argument type it replaced
//  4. second argument unsubstituted
//  5. lexical order of the second argument's type name
func compareVariants(a, b operatorVariant) int {
	tiers := []func(operatorVariant) bool{
		func(v operatorVariant) bool {
			return !v.arg1Substituted && !v.arg2Substituted && v.arg1 == v.arg2
		},
		func(v operatorVariant) bool {
			return !v.arg1Substituted && !v.arg2Substituted
		},
		func(v operatorVariant) bool {
			return v.arg1Substituted && v.arg2 == v.op.Arg1
		},
		func(v operatorVariant) bool {
			return !v.arg2Substituted
		},
	}
	for _, tier := range tiers {
		pa, pb := tier(a), tier(b)
		if pa != pb {
			if pa {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a.arg2, b.arg2)
}

// operatorKind classifies the exposed name for the query layer.
func operatorKind(exposed string) metadata.OperatorKind {
	switch exposed {
	case "_eq":
		return metadata.OperatorKindEqual
	case "_in":
		return metadata.OperatorKindIn
	default:
		return metadata.OperatorKindCustom
	}
}

// findBoolType locates the built-in boolean type. Only the catalog's own
// bool participates in operator resolution.
func findBoolType(snap *catalog.Snapshot) catalog.OID {
	var pgCatalog catalog.OID
	for _, n := range snap.Namespaces {
		if n.Name == "pg_catalog" {
			pgCatalog = n.OID
			break
		}
	}
	for _, t := range snap.Types {
		if t.Name == "bool" && t.Namespace == pgCatalog {
			return t.OID
		}
	}
	return 0
}
