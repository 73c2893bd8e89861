// Package table derives list columns from an AdminConfig and formats record
// values into cells.
//
// Cells never fail. Missing values render as Placeholder, dates that do not
// parse render as schema.InvalidDateLabel and long text is truncated with the
// full value kept in the cell title.
package table
