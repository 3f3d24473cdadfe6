package introspection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarni/ndc-postgres/internal/metadata"
)

func TestIntrospect(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")
	int8 := b.scalar("int8")
	text := b.scalar("text")
	sales := b.namespace("sales")

	users := b.table("users",
		testColumn{"id", int4, true},
		testColumn{"email", text, true},
	)
	b.primaryKey(users, "users_pkey", 1)

	orders := b.relation(sales, "orders",
		"r",
		testColumn{"id", int4, true},
		testColumn{"user_id", int4, false},
	)
	b.foreignKey(orders, "orders_user_id_fkey", []int{2}, users, []int{1})

	b.aggregate("sum", int4, int8)
	b.infixOperator("=", int4, int4)

	meta := Introspect(b.snapshot(), testOptions())

	// public is unqualified, sales is not
	require.Contains(t, meta.Tables, "users")
	require.Contains(t, meta.Tables, "sales.orders")

	usersInfo := meta.Tables["users"]
	assert.Equal(t, "public", usersInfo.SchemaName)
	assert.Equal(t, metadata.UniquenessConstraints{"users_pkey": {"id"}}, usersInfo.UniquenessConstraints)
	assert.Empty(t, usersInfo.ForeignRelations)
	assert.NotNil(t, usersInfo.ForeignRelations)

	ordersInfo := meta.Tables["sales.orders"]
	assert.Equal(t, metadata.ForeignRelations{
		"orders_user_id_fkey": {
			ForeignSchema: "public",
			ForeignTable:  "users",
			ColumnMapping: map[string]string{"user_id": "id"},
		},
	}, ordersInfo.ForeignRelations)

	assert.Equal(t, "int8", meta.AggregateFunctions["int4"]["sum"].ReturnType)
	assert.Equal(t, metadata.OperatorKindEqual, meta.ComparisonFunctions["int4"]["_eq"].OperatorKind)
}

func TestIntrospect_EmptyCatalog(t *testing.T) {
	b := newCatalog()

	meta := Introspect(b.snapshot(), testOptions())

	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"tables": {},
		"aggregateFunctions": {},
		"comparisonFunctions": {}
	}`, string(raw))
}

func TestIntrospect_TableWithoutConstraintsSerializesEmptyMaps(t *testing.T) {
	b := newCatalog()
	int4 := b.scalar("int4")
	b.table("plain", testColumn{"id", int4, true})

	meta := Introspect(b.snapshot(), testOptions())

	raw, err := json.Marshal(meta.Tables["plain"])
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, `{}`, string(decoded["uniquenessConstraints"]))
	assert.JSONEq(t, `{}`, string(decoded["foreignRelations"]))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Contains(t, opts.ExcludedSchemas, "pg_catalog")
	assert.Equal(t, []string{"public"}, opts.UnqualifiedSchemas)
	assert.Contains(t, opts.TypeNameDenylist, "pg_node_tree")
	assert.Contains(t, opts.AllowedComparisonFunctions, "jsonb_exists")
	assert.Contains(t, opts.CastDenylist, CastPair{Source: "geometry", Target: "text"})

	names := make(map[string]string)
	for _, m := range opts.ComparisonOperatorMappings {
		names[m.OperatorName] = m.ExposedName
	}
	assert.Equal(t, "_eq", names["="])
	assert.Equal(t, "_neq", names["<>"])
	assert.Equal(t, "_neq", names["!="])
	assert.Equal(t, "_ilike", names["~~*"])
}
