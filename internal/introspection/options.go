package introspection

// Options is everything the resolution algorithm is configured with.
// All fields are supplied once, before invocation; the algorithm never
// mutates them.
type Options struct {
	// ExcludedSchemas drops these namespaces entirely: their relations and
	// aggregate functions never enter resolution.
	ExcludedSchemas []string `json:"excludedSchemas"`

	// UnqualifiedSchemas lists the namespaces whose tables are exposed
	// under bare names; tables in any other namespace get a
	// schema-qualified key.
	UnqualifiedSchemas []string `json:"unqualifiedSchemas"`

	// ComparisonOperatorMappings renames infix operators for exposure, in
	// order. An infix operator with no mapping entry is dropped.
	ComparisonOperatorMappings []OperatorMapping `json:"comparisonOperatorMappings"`

	// AllowedComparisonFunctions lists the functions eligible to be
	// treated as prefix comparison operators.
	AllowedComparisonFunctions []string `json:"allowedComparisonFunctions"`

	// TypeNameDenylist excludes internal-use type names from the scalar
	// type set. It does not apply to array element resolution.
	TypeNameDenylist []string `json:"typeNameDenylist"`

	// CastDenylist excludes semantically irrelevant implicit casts
	// regardless of context.
	CastDenylist []CastPair `json:"castDenylist"`
}

// OperatorMapping maps an operator's catalog name to its exposed name.
type OperatorMapping struct {
	OperatorName string `json:"operatorName"`
	ExposedName  string `json:"exposedName"`
}

// CastPair is an ordered (source type name, target type name) pair.
type CastPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DefaultOptions returns the stock configuration: system schemas excluded,
// public tables unqualified, the standard comparison operator map, and the
// built-in denylists.
func DefaultOptions() Options {
	return Options{
		ExcludedSchemas: []string{
			"information_schema",
			"pg_catalog",
			"tiger",
			"tiger_data",
			"topology",
		},
		UnqualifiedSchemas: []string{"public"},
		ComparisonOperatorMappings: []OperatorMapping{
			{OperatorName: "=", ExposedName: "_eq"},
			{OperatorName: "<>", ExposedName: "_neq"},
			{OperatorName: "!=", ExposedName: "_neq"},
			{OperatorName: "<", ExposedName: "_lt"},
			{OperatorName: "<=", ExposedName: "_lte"},
			{OperatorName: ">", ExposedName: "_gt"},
			{OperatorName: ">=", ExposedName: "_gte"},
			{OperatorName: "~~", ExposedName: "_like"},
			{OperatorName: "!~~", ExposedName: "_nlike"},
			{OperatorName: "~~*", ExposedName: "_ilike"},
			{OperatorName: "!~~*", ExposedName: "_nilike"},
			{OperatorName: "~", ExposedName: "_regex"},
			{OperatorName: "!~", ExposedName: "_nregex"},
			{OperatorName: "~*", ExposedName: "_iregex"},
			{OperatorName: "!~*", ExposedName: "_niregex"},
		},
		AllowedComparisonFunctions: []string{
			"box_above",
			"box_below",
			"box_left",
			"box_right",
			"jsonb_exists",
			"inet_same_family",
			"st_contains",
			"st_crosses",
			"st_disjoint",
			"st_equals",
			"st_intersects",
			"st_overlaps",
			"st_touches",
			"st_within",
		},
		TypeNameDenylist: []string{
			"aclitem",
			"cid",
			"pg_brin_bloom_summary",
			"pg_brin_minmax_multi_summary",
			"pg_dependencies",
			"pg_mcv_list",
			"pg_ndistinct",
			"pg_node_tree",
			"regclass",
			"regcollation",
			"regconfig",
			"regdictionary",
			"regnamespace",
			"regoper",
			"regoperator",
			"regproc",
			"regprocedure",
			"regrole",
			"regtype",
			"tid",
			"xid",
			"xid8",
		},
		CastDenylist: []CastPair{
			{Source: "bytea", Target: "geography"},
			{Source: "geography", Target: "bytea"},
			{Source: "bytea", Target: "geometry"},
			{Source: "geometry", Target: "bytea"},
			{Source: "geometry", Target: "text"},
			{Source: "text", Target: "geometry"},
		},
	}
}

// stringSet turns a slice into a membership set.
func stringSet(vals []string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	return set
}
