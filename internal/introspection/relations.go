package introspection

import (
	"sort"

	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

// queryableKinds are the relation kinds exposed in the schema. Indexes,
// sequences, composite-type records and TOAST tables never qualify.
var queryableKinds = map[string]bool{
	catalog.RelKindTable:            true,
	catalog.RelKindView:             true,
	catalog.RelKindMaterializedView: true,
	catalog.RelKindForeignTable:     true,
	catalog.RelKindPartitionedTable: true,
}

// table is the normalized form of one surviving relation.
type table struct {
	OID         catalog.OID
	SchemaName  string
	Name        string
	Columns     map[string]metadata.ColumnInfo
	ColumnNames map[int]string // ordinal -> column name, for constraint resolution
	Description string
}

// normalizeRelations filters relations to queryable kinds, deduplicates
// names, resolves every live column's type and attaches comments.
//
// A relation is dropped entirely when any of its live columns has a type
// outside both the scalar and array sets: a table with one opaque column
// cannot be partially exposed.
func normalizeRelations(snap *catalog.Snapshot, class typeClassification, excludedSchemas []string) map[catalog.OID]*table {
	excluded := stringSet(excludedSchemas)

	schemaNames := make(map[catalog.OID]string, len(snap.Namespaces))
	for _, n := range snap.Namespaces {
		schemaNames[n.OID] = n.Name
	}

	var candidates []catalog.Relation
	for _, r := range snap.Relations {
		if !queryableKinds[r.Kind] {
			continue
		}
		schema, ok := schemaNames[r.Namespace]
		if !ok || excluded[schema] {
			continue
		}
		candidates = append(candidates, r)
	}

	// Exactly one relation per distinct name. The (name, namespace, kind)
	// order is an acknowledged "good enough" tie-break, not a claim of
	// correctness across ambiguous multi-schema catalogs; callers may
	// depend on it, so it must not be silently improved.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Kind < b.Kind
	})

	attrsByRelation := make(map[catalog.OID][]catalog.Attribute)
	for _, a := range snap.Attributes {
		attrsByRelation[a.Relation] = append(attrsByRelation[a.Relation], a)
	}

	type commentKey struct {
		relation catalog.OID
		column   int
	}
	comments := make(map[commentKey]string, len(snap.Comments))
	for _, c := range snap.Comments {
		comments[commentKey{c.Relation, c.Column}] = c.Text
	}

	tables := make(map[catalog.OID]*table)
	seenNames := make(map[string]bool)

	for _, r := range candidates {
		if seenNames[r.Name] {
			continue
		}
		seenNames[r.Name] = true

		t := &table{
			OID:         r.OID,
			SchemaName:  schemaNames[r.Namespace],
			Name:        r.Name,
			Columns:     make(map[string]metadata.ColumnInfo),
			ColumnNames: make(map[int]string),
			Description: comments[commentKey{r.OID, 0}],
		}

		supported := true
		for _, a := range attrsByRelation[r.OID] {
			if a.Num <= 0 || a.IsDropped {
				continue
			}
			colType, ok := resolveColumnType(a.Type, class)
			if !ok {
				supported = false
				break
			}
			t.Columns[a.Name] = metadata.ColumnInfo{
				Name:        a.Name,
				Type:        colType,
				Nullable:    !a.NotNull,
				HasDefault:  a.HasDefault,
				IsIdentity:  identityOf(a.Identity),
				IsGenerated: generatedOf(a.Generated),
				Description: comments[commentKey{r.OID, a.Num}],
			}
			t.ColumnNames[a.Num] = a.Name
		}
		if !supported {
			continue
		}

		tables[r.OID] = t
	}

	return tables
}

func resolveColumnType(oid catalog.OID, class typeClassification) (metadata.Type, bool) {
	if name, ok := class.scalars[oid]; ok {
		return metadata.NewScalarType(name), true
	}
	if elem, ok := class.arrays[oid]; ok {
		return metadata.NewArrayType(elem), true
	}
	return metadata.Type{}, false
}

func identityOf(flag string) metadata.Identity {
	switch flag {
	case catalog.IdentityAlways:
		return metadata.IdentityAlways
	case catalog.IdentityByDefault:
		return metadata.IdentityByDefault
	default:
		return ""
	}
}

func generatedOf(flag string) metadata.Generated {
	if flag == catalog.GeneratedStored {
		return metadata.GeneratedStored
	}
	return ""
}
