// Package graph defines the value types of the vocabulary knowledge graph.
//
// A graph is a set of positioned nodes (vocabulary units with a tier band and
// a two-language display text pair) and weighted co-occurrence edges. The
// types here are immutable plain values with both json and bson tags: the
// same structs serve API responses, the layout cache, and the MongoDB script
// source.
//
// # Determinism
//
// Everything downstream of this package (layout, rendering) derives apparent
// randomness from HashID, an FNV-1a hash of the element id. Serialization
// normalizes element order. The same input therefore always produces the same
// bytes and the same pixels.
//
// # Data Quality
//
// Edges referencing unknown nodes are dropped by FilterDangling with a debug
// log. This is deliberate recovery, not an error path: course data is
// assembled from many sources and a dangling connection must never take the
// whole graph down.
package graph
