package introspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarni/ndc-postgres/internal/catalog"
	"github.com/jkarni/ndc-postgres/internal/metadata"
)

func TestResolveUniqueness(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")
	text := b.scalar("text")

	users := b.table("users",
		testColumn{"id", int4, true},
		testColumn{"email", text, true},
		testColumn{"tenant", int4, true},
	)
	b.primaryKey(users, "users_pkey", 1)
	b.unique(users, "users_tenant_email_key", 3, 2)

	class := classifyTypes(b.snapshot().Types, nil)
	tables := normalizeRelations(b.snapshot(), class, nil)
	uniqueness := resolveUniqueness(b.snapshot().Constraints, tables)

	require.Contains(t, uniqueness, users)
	assert.Equal(t, metadata.UniquenessConstraints{
		"users_pkey":             {"id"},
		"users_tenant_email_key": {"tenant", "email"},
	}, uniqueness[users])
}

func TestResolveUniqueness_UnknownOrdinalSkipped(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")
	users := b.table("users", testColumn{"id", int4, true})
	b.unique(users, "users_ghost_key", 7)

	class := classifyTypes(b.snapshot().Types, nil)
	tables := normalizeRelations(b.snapshot(), class, nil)
	uniqueness := resolveUniqueness(b.snapshot().Constraints, tables)

	assert.NotContains(t, uniqueness, users)
}

func TestResolveForeignKeys(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")

	users := b.table("users", testColumn{"id", int4, true})
	orders := b.table("orders",
		testColumn{"id", int4, true},
		testColumn{"user_id", int4, false},
	)
	b.foreignKey(orders, "orders_user_id_fkey", []int{2}, users, []int{1})

	class := classifyTypes(b.snapshot().Types, nil)
	tables := normalizeRelations(b.snapshot(), class, nil)
	fks := resolveForeignKeys(b.snapshot().Constraints, tables)

	require.Contains(t, fks, orders)
	assert.Equal(t, metadata.ForeignRelations{
		"orders_user_id_fkey": {
			ForeignSchema: "public",
			ForeignTable:  "users",
			ColumnMapping: map[string]string{"user_id": "id"},
		},
	}, fks[orders])
}

func TestResolveForeignKeys_ReferencedTableDroppedSkipsConstraint(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")
	composite := b.typ("address", catalog.TypeKindComposite, "C", 0)

	// users does not survive normalization because of the opaque column
	users := b.table("users",
		testColumn{"id", int4, true},
		testColumn{"home", composite, false},
	)
	orders := b.table("orders",
		testColumn{"id", int4, true},
		testColumn{"user_id", int4, false},
	)
	b.foreignKey(orders, "orders_user_id_fkey", []int{2}, users, []int{1})

	class := classifyTypes(b.snapshot().Types, nil)
	tables := normalizeRelations(b.snapshot(), class, nil)
	fks := resolveForeignKeys(b.snapshot().Constraints, tables)

	assert.NotContains(t, tables, users)
	assert.NotContains(t, fks, orders)
}

func TestResolveForeignKeys_ArityMismatchSkipped(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")

	users := b.table("users", testColumn{"id", int4, true})
	orders := b.table("orders",
		testColumn{"id", int4, true},
		testColumn{"user_id", int4, false},
	)
	b.foreignKey(orders, "orders_bad_fkey", []int{1, 2}, users, []int{1})

	class := classifyTypes(b.snapshot().Types, nil)
	tables := normalizeRelations(b.snapshot(), class, nil)
	fks := resolveForeignKeys(b.snapshot().Constraints, tables)

	assert.NotContains(t, fks, orders)
}
