package introspection

import "github.com/jkarni/ndc-postgres/internal/catalog"

// typeClassification partitions the catalog's types into disjoint scalar
// and array sets. Types in neither set are unusable; any column referencing
// one causes its whole relation to be dropped.
type typeClassification struct {
	scalars map[catalog.OID]string // oid -> scalar type name
	arrays  map[catalog.OID]string // oid -> element scalar type name
}

// classifyTypes applies the classification rules:
//
//   - composite and pseudo kinds are excluded outright
//   - a type is an array iff it declares an element type AND the catalog
//     categorises it as an array; its element must itself be scalar-eligible
//   - the name denylist applies to the scalar set only, never to array
//     element resolution
func classifyTypes(types []catalog.Type, denylist []string) typeClassification {
	byOID := make(map[catalog.OID]catalog.Type, len(types))
	for _, t := range types {
		byOID[t.OID] = t
	}

	denied := stringSet(denylist)

	class := typeClassification{
		scalars: make(map[catalog.OID]string),
		arrays:  make(map[catalog.OID]string),
	}

	for _, t := range types {
		switch {
		case !scalarEligible(t):
			// composite, pseudo, or an array shape handled below

		case denied[t.Name]:
			// internal-use type, not exposed

		default:
			class.scalars[t.OID] = t.Name
		}

		if isArray(t) {
			elem, ok := byOID[t.ElementType]
			if !ok || !scalarEligible(elem) {
				// e.g. an array of a composite type: absent from both sets
				continue
			}
			class.arrays[t.OID] = elem.Name
		}
	}

	return class
}

// scalarEligible reports whether t can stand as a scalar type, ignoring
// the name denylist.
func scalarEligible(t catalog.Type) bool {
	if t.Kind == catalog.TypeKindComposite || t.Kind == catalog.TypeKindPseudo {
		return false
	}
	return !isArray(t)
}

// isArray reports whether the catalog marks t as a true array type. Both
// conditions are required: some non-array types (e.g. ranges) declare an
// element type without being array-categorised.
func isArray(t catalog.Type) bool {
	return t.ElementType != 0 && t.Category == catalog.TypeCategoryArray
}
