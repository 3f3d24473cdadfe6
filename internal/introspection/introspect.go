// Package introspection derives a queryable connector schema from a raw
// catalog snapshot: tables and their columns, uniqueness and foreign key
// constraints, aggregate functions, and the comparison operators usable in
// filter expressions.
//
// The whole derivation is a pure, synchronous, single-pass transformation
// over an immutable snapshot: load, classify, normalize, resolve, assemble.
// Malformed or unsupported catalog entries are silently dropped, never
// reported as errors; the only fatal precondition is a non-atomic snapshot
// read, which is the catalog reader's contract, not this package's.
package introspection

import (
	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// Introspect derives the connector schema from a catalog snapshot.
func Introspect(snap *catalog.Snapshot, opts Options) metadata.Metadata {
	class := classifyTypes(snap.Types, opts.TypeNameDenylist)
	casts := resolveImplicitCasts(snap.Casts, class, opts.CastDenylist)

	tables := normalizeRelations(snap, class, opts.ExcludedSchemas)
	uniqueness := resolveUniqueness(snap.Constraints, tables)
	foreignKeys := resolveForeignKeys(snap.Constraints, tables)

	meta := metadata.Empty()
	meta.AggregateFunctions = resolveAggregates(snap, class, opts.ExcludedSchemas)
	meta.ComparisonFunctions = resolveComparisonOperators(snap, class, casts, opts)

	unqualified := stringSet(opts.UnqualifiedSchemas)
	for oid, t := range tables {
		info := metadata.TableInfo{
			SchemaName:            t.SchemaName,
			TableName:             t.Name,
			Columns:               t.Columns,
			UniquenessConstraints: uniqueness[oid],
			ForeignRelations:      foreignKeys[oid],
			Description:           t.Description,
		}
		if info.UniquenessConstraints == nil {
			info.UniquenessConstraints = metadata.UniquenessConstraints{}
		}
		if info.ForeignRelations == nil {
			info.ForeignRelations = metadata.ForeignRelations{}
		}

		// Collisions under this naming scheme are not deduplicated; two
		// qualified-schema tables whose keys coincide will overwrite each
		// other. Known limitation.
		meta.Tables[tableKey(t, unqualified)] = info
	}

	return meta
}

// tableKey builds the exposed key of a table: the bare name when its
// owning schema is configured as unqualified, the schema-qualified name
// otherwise.
func tableKey(t *table, unqualified map[string]bool) string {
	if unqualified[t.SchemaName] {
		return t.Name
	}
	return t.SchemaName + "." + t.Name
}
