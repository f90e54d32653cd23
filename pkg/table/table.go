// Package table defines the dataset abstraction the metric layer evaluates
// against: a sealed Table with exactly two representations, a fully
// materialized Local table and a partition-backed Partitioned table whose
// contents are only loaded when scanned.
package table

// Kind identifies a table's runtime representation.
type Kind string

const (
	// KindLocal is a fully materialized in-memory table.
	KindLocal Kind = "local"
	// KindPartitioned is a partition-backed table with deferred loading.
	KindPartitioned Kind = "partitioned"
)

// Table is the sealed dataset interface. The two implementations live in
// this package; consumers dispatch exhaustively over the kinds and treat
// anything else as a programming error.
type Table interface {
	Kind() Kind

	// sealed prevents implementations outside this package so that kind
	// dispatch stays exhaustive.
	sealed()
}
