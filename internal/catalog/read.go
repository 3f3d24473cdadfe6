package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jkarni/ndc-postgres/internal/errs"
)

// Querier is the subset of pgx.Tx the reader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Read fetches every catalog collection through q and returns them as one
// Snapshot.
//
// Precondition (unchecked): all queries must observe a single atomic,
// referentially consistent view of the catalogs. Callers must run Read
// inside one REPEATABLE READ, READ ONLY transaction; the resolution
// algorithm downstream has no way to detect or recover from a torn read.
func Read(ctx context.Context, q Querier) (*Snapshot, error) {
	snap := &Snapshot{}

	for _, step := range []struct {
		name string
		run  func(context.Context, Querier, *Snapshot) error
	}{
		{"namespaces", readNamespaces},
		{"relations", readRelations},
		{"attributes", readAttributes},
		{"types", readTypes},
		{"casts", readCasts},
		{"procs", readProcs},
		{"operators", readOperators},
		{"aggregates", readAggregates},
		{"constraints", readConstraints},
		{"comments", readComments},
	} {
		if err := step.run(ctx, q, snap); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "read catalog "+step.name, err)
		}
	}

	return snap, nil
}

func readNamespaces(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `SELECT oid, nspname FROM pg_catalog.pg_namespace`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n Namespace
		if err := rows.Scan(&n.OID, &n.Name); err != nil {
			return err
		}
		snap.Namespaces = append(snap.Namespaces, n)
	}
	return rows.Err()
}

func readRelations(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT oid, relnamespace, relname, relkind::text
		FROM pg_catalog.pg_class`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.OID, &r.Namespace, &r.Name, &r.Kind); err != nil {
			return err
		}
		snap.Relations = append(snap.Relations, r)
	}
	return rows.Err()
}

func readAttributes(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT attrelid, attname, attnum, atttypid, attnotnull,
		       atthasdef, attidentity::text, attgenerated::text, attisdropped
		FROM pg_catalog.pg_attribute`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a Attribute
		var num int16
		if err := rows.Scan(
			&a.Relation, &a.Name, &num, &a.Type, &a.NotNull,
			&a.HasDefault, &a.Identity, &a.Generated, &a.IsDropped,
		); err != nil {
			return err
		}
		a.Num = int(num)
		snap.Attributes = append(snap.Attributes, a)
	}
	return rows.Err()
}

func readTypes(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT oid, typnamespace, typname, typtype::text, typcategory::text, typelem
		FROM pg_catalog.pg_type`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.OID, &t.Namespace, &t.Name, &t.Kind, &t.Category, &t.ElementType); err != nil {
			return err
		}
		snap.Types = append(snap.Types, t)
	}
	return rows.Err()
}

func readCasts(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT castsource, casttarget, castcontext::text
		FROM pg_catalog.pg_cast`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c Cast
		if err := rows.Scan(&c.Source, &c.Target, &c.Context); err != nil {
			return err
		}
		snap.Casts = append(snap.Casts, c)
	}
	return rows.Err()
}

func readProcs(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT oid, pronamespace, proname, prokind::text,
		       proargtypes::oid[], prorettype, provariadic, pronargdefaults
		FROM pg_catalog.pg_proc`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p Proc
		var argTypes []uint32
		if err := rows.Scan(
			&p.OID, &p.Namespace, &p.Name, &p.Kind,
			&argTypes, &p.ReturnType, &p.Variadic, &p.NumArgDefaults,
		); err != nil {
			return err
		}
		p.ArgTypes = make([]OID, len(argTypes))
		for i, t := range argTypes {
			p.ArgTypes[i] = OID(t)
		}
		snap.Procs = append(snap.Procs, p)
	}
	return rows.Err()
}

func readOperators(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT oid, oprname, oprleft, oprright, oprresult, oprkind::text
		FROM pg_catalog.pg_operator`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o Operator
		if err := rows.Scan(&o.OID, &o.Name, &o.Left, &o.Right, &o.Result, &o.Kind); err != nil {
			return err
		}
		snap.Operators = append(snap.Operators, o)
	}
	return rows.Err()
}

func readAggregates(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT aggfnoid::oid, aggnumdirectargs
		FROM pg_catalog.pg_aggregate`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a Aggregate
		var directArgs int16
		if err := rows.Scan(&a.Proc, &directArgs); err != nil {
			return err
		}
		a.NumDirectArgs = int(directArgs)
		snap.Aggregates = append(snap.Aggregates, a)
	}
	return rows.Err()
}

func readConstraints(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT oid, conname, conrelid, contype::text, conkey::int4[], confrelid, confkey::int4[]
		FROM pg_catalog.pg_constraint`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c Constraint
		var key, foreignKey []int32
		if err := rows.Scan(&c.OID, &c.Name, &c.Relation, &c.Type, &key, &c.ForeignRelation, &foreignKey); err != nil {
			return err
		}
		c.Key = toInts(key)
		c.ForeignKey = toInts(foreignKey)
		snap.Constraints = append(snap.Constraints, c)
	}
	return rows.Err()
}

func readComments(ctx context.Context, q Querier, snap *Snapshot) error {
	const sql = `
		SELECT objoid, objsubid, description
		FROM pg_catalog.pg_description
		WHERE classoid = 'pg_catalog.pg_class'::regclass`

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.Relation, &c.Column, &c.Text); err != nil {
			return err
		}
		snap.Comments = append(snap.Comments, c)
	}
	return rows.Err()
}

func toInts(vals []int32) []int {
	if vals == nil {
		return nil
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out
}
