// Package dataset holds the activity export pipeline: parsing uploaded export
// files, merging them into one table, deriving calendar buckets and unit
// conversions, encoding the table for the session store, and aggregating it
// for charts.
//
// Every stage is a pure function over explicit inputs. Nothing in this package
// performs I/O beyond the readers and writers it is handed.
package dataset
