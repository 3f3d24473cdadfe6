package introspection

import (
	"sort"

	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// resolveAggregates selects the aggregate functions usable by the query
// layer: exactly one direct argument, non-variadic, no ordered-set
// ("direct") arguments, and both the argument and the return type must
// resolve to scalar types.
func resolveAggregates(snap *catalog.Snapshot, class typeClassification, excludedSchemas []string) metadata.AggregateFunctions {
	excluded := stringSet(excludedSchemas)

	schemaNames := make(map[catalog.OID]string, len(snap.Namespaces))
	for _, n := range snap.Namespaces {
		schemaNames[n.OID] = n.Name
	}
	procs := make(map[catalog.OID]catalog.Proc, len(snap.Procs))
	for _, p := range snap.Procs {
		procs[p.OID] = p
	}

	type candidate struct {
		argType    string
		name       string
		returnType string
	}
	var candidates []candidate

	for _, agg := range snap.Aggregates {
		p, ok := procs[agg.Proc]
		if !ok {
			continue
		}
		if excluded[schemaNames[p.Namespace]] {
			continue
		}
		if agg.NumDirectArgs != 0 || len(p.ArgTypes) != 1 || p.Variadic != 0 {
			continue
		}
		argType, ok := class.scalars[p.ArgTypes[0]]
		if !ok {
			continue
		}
		returnType, ok := class.scalars[p.ReturnType]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{argType, p.Name, returnType})
	}

	// Resolution can in principle yield several rows for one
	// (argument type, name) pair. Order on (argument type, name, return
	// type) and keep the first — a defensive tie-break, not an expected
	// case.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.argType != b.argType {
			return a.argType < b.argType
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.returnType < b.returnType
	})

	out := metadata.AggregateFunctions{}
	for _, c := range candidates {
		if _, ok := out[c.argType][c.name]; ok {
			continue
		}
		if out[c.argType] == nil {
			out[c.argType] = make(map[string]metadata.AggregateFunction)
		}
		out[c.argType][c.name] = metadata.AggregateFunction{ReturnType: c.returnType}
	}
	return out
}
