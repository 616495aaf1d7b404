// Package record defines the capability contracts stored records expose
// and a concrete record type, Object, that implements all of them.
//
// Only Identifiable is required. The other capabilities are optional and
// detected at runtime with type assertions:
//   - NamedDescribable: display name and description, used for name lookups
//   - AttributeProvider: attribute names and their value kinds
//   - MasterProvider: an optional grouping record
//   - Equaler / Hasher: value equality and hashing where Go's == is not enough
//
// Attribute values are constrained to the sealed Value interface. This
// package imports nothing internal except idgen.
package record
