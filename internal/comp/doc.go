// Package comp implements the component runtime: a registry of factories
// keyed by `<capability>::<implementation>` strings, a single ownership tree
// of live component instances addressed by hierarchical locators, a
// recursive binary serialization engine for the tree, and the
// weak-reference repair pass that re-resolves cached cross-branch pointers
// after deserialization.
//
// Registration and tree mutation are single-threaded phases; the package
// performs no internal locking. Once a tree is built it may be read
// concurrently by render workers.
package comp
