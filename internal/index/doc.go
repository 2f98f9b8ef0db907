// Package index maintains the SQLite database of resolved records written
// alongside the output tree. Downstream generators use it to enumerate
// records and detect content changes by hash without re-walking the tree.
package index
