// Package catalog reads a consistent snapshot of the PostgreSQL system
// catalogs. It supplies raw, already-decoded records; all interpretation
// (type classification, constraint reconstruction, operator resolution)
// happens in the introspection package.
package catalog

// OID identifies a catalog object.
type OID uint32

// Relation kinds (pg_class.relkind).
const (
	RelKindTable            = "r"
	RelKindView             = "v"
	RelKindMaterializedView = "m"
	RelKindForeignTable     = "f"
	RelKindPartitionedTable = "p"
	RelKindIndex            = "i"
	RelKindSequence         = "S"
	RelKindCompositeType    = "c"
	RelKindToastTable       = "t"
)

// Type kinds (pg_type.typtype).
const (
	TypeKindBase      = "b"
	TypeKindComposite = "c"
	TypeKindDomain    = "d"
	TypeKindEnum      = "e"
	TypeKindPseudo    = "p"
	TypeKindRange     = "r"
)

// TypeCategoryArray is the pg_type.typcategory tag for true array types.
const TypeCategoryArray = "A"

// CastContextImplicit marks casts usable without explicit conversion
// syntax (pg_cast.castcontext).
const CastContextImplicit = "i"

// Constraint types (pg_constraint.contype).
const (
	ConstraintUnique     = "u"
	ConstraintPrimaryKey = "p"
	ConstraintForeignKey = "f"
)

// Identity flags (pg_attribute.attidentity).
const (
	IdentityAlways    = "a"
	IdentityByDefault = "d"
)

// GeneratedStored marks a stored generated column (pg_attribute.attgenerated).
const GeneratedStored = "s"

// Namespace is a schema (pg_namespace row).
type Namespace struct {
	OID  OID
	Name string
}

// Relation is a pg_class row.
type Relation struct {
	OID       OID
	Namespace OID
	Name      string
	Kind      string
}

// Attribute is a pg_attribute row. Non-positive Num values are
// system-reserved columns; IsDropped marks historic columns.
type Attribute struct {
	Relation   OID
	Name       string
	Num        int
	Type       OID
	NotNull    bool
	HasDefault bool
	Identity   string
	Generated  string
	IsDropped  bool
}

// Type is a pg_type row.
type Type struct {
	OID         OID
	Namespace   OID
	Name        string
	Kind        string
	Category    string
	ElementType OID // zero when the type is not subscriptable
}

// Cast is a pg_cast row.
type Cast struct {
	Source  OID
	Target  OID
	Context string
}

// Proc kinds (pg_proc.prokind).
const (
	ProcKindFunction  = "f"
	ProcKindAggregate = "a"
	ProcKindWindow    = "w"
	ProcKindProcedure = "p"
)

// Proc is a pg_proc row.
type Proc struct {
	OID            OID
	Namespace      OID
	Name           string
	Kind           string
	ArgTypes       []OID
	ReturnType     OID
	Variadic       OID // zero for non-variadic functions
	NumArgDefaults int
}

// Operator is a pg_operator row. Kind "b" is a true infix (binary)
// operator; prefix operators have a zero Left operand.
type Operator struct {
	OID    OID
	Name   string
	Left   OID
	Right  OID
	Result OID
	Kind   string
}

// Aggregate is a pg_aggregate row binding a proc to aggregate semantics.
// NumDirectArgs is non-zero for ordered-set aggregates.
type Aggregate struct {
	Proc          OID
	NumDirectArgs int
}

// Constraint is a pg_constraint row. Key and ForeignKey hold column
// ordinals referencing Attribute.Num values.
type Constraint struct {
	OID             OID
	Name            string
	Relation        OID
	Type            string
	Key             []int
	ForeignRelation OID // zero unless Type is ConstraintForeignKey
	ForeignKey      []int
}

// Comment is a pg_description row for a relation (Column == 0) or for a
// single column (Column is the attribute ordinal).
type Comment struct {
	Relation OID
	Column   int
	Text     string
}

// Snapshot holds all catalog collections read within one atomic view.
// It is immutable after Read returns.
type Snapshot struct {
	Namespaces  []Namespace
	Relations   []Relation
	Attributes  []Attribute
	Types       []Type
	Casts       []Cast
	Procs       []Proc
	Operators   []Operator
	Aggregates  []Aggregate
	Constraints []Constraint
	Comments    []Comment
}
