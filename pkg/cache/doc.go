// Package cache provides keyed blob caching for the expensive pipeline
// stages: fetched course scripts, computed layouts, and rendered frames.
//
// The Cache interface has three backends. FileCache persists entries on disk
// for CLI runs, RedisCache shares entries between server replicas, and
// NullCache disables caching. Keyer builds the keys; DefaultKeyer hashes the
// stage parameters so any input change is a miss, and ScopedKeyer adds a
// namespace prefix on top.
package cache
