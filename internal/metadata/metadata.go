// Package metadata defines the connector schema produced by introspection.
//
// The schema is a plain serializable value: once assembled it is never
// mutated, and all map-valued fields are non-nil so that empty categories
// serialize as empty JSON objects rather than null.
package metadata

// Metadata is the complete queryable schema derived from a database catalog.
type Metadata struct {
	Tables              TablesInfo          `json:"tables"`
	AggregateFunctions  AggregateFunctions  `json:"aggregateFunctions"`
	ComparisonFunctions ComparisonOperators `json:"comparisonFunctions"`
}

// Empty returns a Metadata value with all categories present but empty.
func Empty() Metadata {
	return Metadata{
		Tables:              TablesInfo{},
		AggregateFunctions:  AggregateFunctions{},
		ComparisonFunctions: ComparisonOperators{},
	}
}

// TablesInfo maps an exposed table key to information about the table.
// The key is the bare table name when the owning schema is configured as
// unqualified, and "schema.table" otherwise.
type TablesInfo map[string]TableInfo

// TableInfo describes a table or any other queryable relation
// (view, materialized view, foreign table, partitioned table).
type TableInfo struct {
	SchemaName            string                `json:"schemaName"`
	TableName             string                `json:"tableName"`
	Columns               map[string]ColumnInfo `json:"columns"`
	UniquenessConstraints UniquenessConstraints `json:"uniquenessConstraints"`
	ForeignRelations      ForeignRelations      `json:"foreignRelations"`
	Description           string                `json:"description,omitempty"`
}

// ColumnInfo describes a single column.
type ColumnInfo struct {
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Nullable    bool      `json:"nullable"`
	HasDefault  bool      `json:"hasDefault,omitempty"`
	IsIdentity  Identity  `json:"isIdentity,omitempty"`
	IsGenerated Generated `json:"isGenerated,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Identity describes how an identity column generates its values.
// The empty string means the column is not an identity column.
type Identity string

const (
	IdentityByDefault Identity = "identityByDefault"
	IdentityAlways    Identity = "identityAlways"
)

// Generated marks a generated column. The empty string means not generated.
type Generated string

const GeneratedStored Generated = "stored"

// Type is the type of a column: either a scalar type or an array of a
// scalar element type. Exactly one of the two fields is set.
type Type struct {
	ScalarType string `json:"scalarType,omitempty"`
	ArrayType  *Type  `json:"arrayType,omitempty"`
}

// NewScalarType builds the type of a scalar column.
func NewScalarType(name string) Type {
	return Type{ScalarType: name}
}

// NewArrayType builds the type of an array column over the named scalar
// element type. Postgres collapses nested arrays into one level, so the
// element is always a scalar.
func NewArrayType(element string) Type {
	return Type{ArrayType: &Type{ScalarType: element}}
}

// IsArray reports whether t is an array type.
func (t Type) IsArray() bool {
	return t.ArrayType != nil
}

// UniquenessConstraints maps a constraint name to the ordered set of column
// names that make up the constraint. Primary keys are included.
type UniquenessConstraints map[string][]string

// ForeignRelations maps a foreign key constraint name to its definition.
type ForeignRelations map[string]ForeignRelation

// ForeignRelation describes a foreign key constraint.
type ForeignRelation struct {
	ForeignSchema string            `json:"foreignSchema,omitempty"`
	ForeignTable  string            `json:"foreignTable"`
	ColumnMapping map[string]string `json:"columnMapping"`
}

// AggregateFunctions groups the supported single-argument aggregate
// functions by argument type name, then by function name.
type AggregateFunctions map[string]map[string]AggregateFunction

// AggregateFunction describes one aggregate function over a fixed
// argument type.
type AggregateFunction struct {
	ReturnType string `json:"returnType"`
}

// ComparisonOperators groups the usable comparison operators by the type
// name of their first argument, then by exposed operator name. For a fixed
// first-argument type each exposed name maps to exactly one definition.
type ComparisonOperators map[string]map[string]ComparisonOperator

// ComparisonOperator describes one comparison operator definition.
type ComparisonOperator struct {
	OperatorName string       `json:"operatorName"`
	OperatorKind OperatorKind `json:"operatorKind"`
	ArgumentType string       `json:"argumentType"`
	IsInfix      bool         `json:"isInfix"`
}

// OperatorKind tells the query layer whether an operator has built-in
// equality semantics or is database-specific.
type OperatorKind string

const (
	OperatorKindEqual  OperatorKind = "equal"
	OperatorKindIn     OperatorKind = "in"
	OperatorKindCustom OperatorKind = "custom"
)
