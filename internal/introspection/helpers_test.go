package introspection

import "github.com/jkarni/ndc-postgres/internal/catalog"

// catalogBuilder assembles synthetic catalog snapshots for tests. It seeds
// the pg_catalog and public namespaces and the bool type, which operator
// resolution requires.
type catalogBuilder struct {
	snap    catalog.Snapshot
	nextOID catalog.OID

	pgCatalog catalog.OID
	public    catalog.OID
	boolType  catalog.OID
}

func newCatalog() *catalogBuilder {
	b := &catalogBuilder{nextOID: 1000}
	b.pgCatalog = b.namespace("pg_catalog")
	b.public = b.namespace("public")
	b.boolType = b.scalarIn(b.pgCatalog, "bool")
	return b
}

func (b *catalogBuilder) snapshot() *catalog.Snapshot {
	return &b.snap
}

func (b *catalogBuilder) oid() catalog.OID {
	b.nextOID++
	return b.nextOID
}

func (b *catalogBuilder) namespace(name string) catalog.OID {
	oid := b.oid()
	b.snap.Namespaces = append(b.snap.Namespaces, catalog.Namespace{OID: oid, Name: name})
	return oid
}

// scalar registers a base type in pg_catalog.
func (b *catalogBuilder) scalar(name string) catalog.OID {
	return b.scalarIn(b.pgCatalog, name)
}

func (b *catalogBuilder) scalarIn(ns catalog.OID, name string) catalog.OID {
	oid := b.oid()
	b.snap.Types = append(b.snap.Types, catalog.Type{
		OID:       oid,
		Namespace: ns,
		Name:      name,
		Kind:      catalog.TypeKindBase,
		Category:  "N",
	})
	return oid
}

// typ registers a raw type record with full control over its fields.
func (b *catalogBuilder) typ(name, kind, category string, elem catalog.OID) catalog.OID {
	oid := b.oid()
	b.snap.Types = append(b.snap.Types, catalog.Type{
		OID:         oid,
		Namespace:   b.pgCatalog,
		Name:        name,
		Kind:        kind,
		Category:    category,
		ElementType: elem,
	})
	return oid
}

// array registers a true array type over elem.
func (b *catalogBuilder) array(name string, elem catalog.OID) catalog.OID {
	return b.typ(name, catalog.TypeKindBase, catalog.TypeCategoryArray, elem)
}

func (b *catalogBuilder) implicitCast(source, target catalog.OID) {
	b.snap.Casts = append(b.snap.Casts, catalog.Cast{
		Source:  source,
		Target:  target,
		Context: catalog.CastContextImplicit,
	})
}

// infixOperator registers a boolean-returning binary operator.
func (b *catalogBuilder) infixOperator(name string, left, right catalog.OID) {
	b.snap.Operators = append(b.snap.Operators, catalog.Operator{
		OID:    b.oid(),
		Name:   name,
		Left:   left,
		Right:  right,
		Result: b.boolType,
		Kind:   "b",
	})
}

// function registers a plain function in pg_catalog.
func (b *catalogBuilder) function(name string, args []catalog.OID, ret catalog.OID) catalog.OID {
	return b.functionIn(b.pgCatalog, name, args, ret)
}

func (b *catalogBuilder) functionIn(ns catalog.OID, name string, args []catalog.OID, ret catalog.OID) catalog.OID {
	oid := b.oid()
	b.snap.Procs = append(b.snap.Procs, catalog.Proc{
		OID:        oid,
		Namespace:  ns,
		Name:       name,
		Kind:       catalog.ProcKindFunction,
		ArgTypes:   args,
		ReturnType: ret,
	})
	return oid
}

// aggregate registers an aggregate function with a single direct argument.
func (b *catalogBuilder) aggregate(name string, arg, ret catalog.OID) catalog.OID {
	oid := b.oid()
	b.snap.Procs = append(b.snap.Procs, catalog.Proc{
		OID:        oid,
		Namespace:  b.pgCatalog,
		Name:       name,
		Kind:       catalog.ProcKindAggregate,
		ArgTypes:   []catalog.OID{arg},
		ReturnType: ret,
	})
	b.snap.Aggregates = append(b.snap.Aggregates, catalog.Aggregate{Proc: oid})
	return oid
}

type testColumn struct {
	name    string
	typeOID catalog.OID
	notNull bool
}

// table registers a relation of kind "r" in public with live columns
// numbered from 1.
func (b *catalogBuilder) table(name string, cols ...testColumn) catalog.OID {
	return b.relation(b.public, name, catalog.RelKindTable, cols...)
}

func (b *catalogBuilder) relation(ns catalog.OID, name, kind string, cols ...testColumn) catalog.OID {
	oid := b.oid()
	b.snap.Relations = append(b.snap.Relations, catalog.Relation{
		OID:       oid,
		Namespace: ns,
		Name:      name,
		Kind:      kind,
	})
	for i, c := range cols {
		b.snap.Attributes = append(b.snap.Attributes, catalog.Attribute{
			Relation: oid,
			Name:     c.name,
			Num:      i + 1,
			Type:     c.typeOID,
			NotNull:  c.notNull,
		})
	}
	return oid
}

func (b *catalogBuilder) constraint(c catalog.Constraint) {
	c.OID = b.oid()
	b.snap.Constraints = append(b.snap.Constraints, c)
}

func (b *catalogBuilder) primaryKey(rel catalog.OID, name string, ordinals ...int) {
	b.constraint(catalog.Constraint{
		Name:     name,
		Relation: rel,
		Type:     catalog.ConstraintPrimaryKey,
		Key:      ordinals,
	})
}

func (b *catalogBuilder) unique(rel catalog.OID, name string, ordinals ...int) {
	b.constraint(catalog.Constraint{
		Name:     name,
		Relation: rel,
		Type:     catalog.ConstraintUnique,
		Key:      ordinals,
	})
}

func (b *catalogBuilder) foreignKey(rel catalog.OID, name string, key []int, foreign catalog.OID, foreignKey []int) {
	b.constraint(catalog.Constraint{
		Name:            name,
		Relation:        rel,
		Type:            catalog.ConstraintForeignKey,
		Key:             key,
		ForeignRelation: foreign,
		ForeignKey:      foreignKey,
	})
}

func (b *catalogBuilder) comment(rel catalog.OID, column int, text string) {
	b.snap.Comments = append(b.snap.Comments, catalog.Comment{
		Relation: rel,
		Column:   column,
		Text:     text,
	})
}

// options returns Options with empty denylists and the standard equality
// mapping, enough for most tests.
func testOptions() Options {
	return Options{
		ExcludedSchemas:    []string{"pg_catalog", "information_schema"},
		UnqualifiedSchemas: []string{"public"},
		ComparisonOperatorMappings: []OperatorMapping{
			{OperatorName: "=", ExposedName: "_eq"},
			{OperatorName: "<", ExposedName: "_lt"},
		},
	}
}
