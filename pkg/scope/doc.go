// Package scope decides object-level access from a principal's role and
// organizational reach.
//
// The evaluator consumes a resolved role type plus the principal's active
// role assignments and gates one specific action on one target entity
// (for example, whether a consultant may view a session record at a given
// school). The policy is default-deny with ordered allow rules; see Evaluate.
//
// Scope identifiers are stored as integers for schools and as UUIDs for
// generations, communities and networks, while request payloads carry them
// as strings. NormalizeID folds every representation into one canonical
// string form before any equality check; no raw comparison across mismatched
// representations happens anywhere in the package.
package scope
