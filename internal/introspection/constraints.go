package introspection

import (
	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// resolveUniqueness reconstructs primary key and unique constraints for
// the surviving relations. Catalog rows store column ordinals; these are
// mapped back to names through the normalizer's output. Constraints on
// relations that did not survive normalization are not attempted.
func resolveUniqueness(constraints []catalog.Constraint, tables map[catalog.OID]*table) map[catalog.OID]metadata.UniquenessConstraints {
	out := make(map[catalog.OID]metadata.UniquenessConstraints)

	for _, c := range constraints {
		if c.Type != catalog.ConstraintUnique && c.Type != catalog.ConstraintPrimaryKey {
			continue
		}
		t, ok := tables[c.Relation]
		if !ok {
			continue
		}
		columns, ok := columnNames(t, c.Key)
		if !ok {
			continue
		}
		if out[c.Relation] == nil {
			out[c.Relation] = metadata.UniquenessConstraints{}
		}
		out[c.Relation][c.Name] = columns
	}

	return out
}

// resolveForeignKeys reconstructs foreign key constraints. A constraint is
// skipped unless both the referencing and the referenced relation survived
// normalization and every ordinal on both sides resolves to a live column.
func resolveForeignKeys(constraints []catalog.Constraint, tables map[catalog.OID]*table) map[catalog.OID]metadata.ForeignRelations {
	out := make(map[catalog.OID]metadata.ForeignRelations)

	for _, c := range constraints {
		if c.Type != catalog.ConstraintForeignKey {
			continue
		}
		t, ok := tables[c.Relation]
		if !ok {
			continue
		}
		foreign, ok := tables[c.ForeignRelation]
		if !ok {
			continue
		}
		if len(c.Key) != len(c.ForeignKey) {
			continue
		}
		local, ok := columnNames(t, c.Key)
		if !ok {
			continue
		}
		referenced, ok := columnNames(foreign, c.ForeignKey)
		if !ok {
			continue
		}

		mapping := make(map[string]string, len(local))
		for i, name := range local {
			mapping[name] = referenced[i]
		}

		if out[c.Relation] == nil {
			out[c.Relation] = metadata.ForeignRelations{}
		}
		out[c.Relation][c.Name] = metadata.ForeignRelation{
			ForeignSchema: foreign.SchemaName,
			ForeignTable:  foreign.Name,
			ColumnMapping: mapping,
		}
	}

	return out
}

// columnNames maps constraint ordinals to column names, preserving order.
func columnNames(t *table, ordinals []int) ([]string, bool) {
	names := make([]string, 0, len(ordinals))
	for _, ord := range ordinals {
		name, ok := t.ColumnNames[ord]
		if !ok {
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}
