// Package script loads course scripts, the authored input that a layout is
// built from. A script carries the ordered vocabulary rounds, pairwise
// connection counts, and the spoken phrases used for path playback.
//
// Two providers exist: FileProvider reads JSON files from a local directory
// (one file per course), and MongoProvider fetches documents from a MongoDB
// collection. Both validate the script before returning it.
package script
