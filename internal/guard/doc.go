// Package guard is the supervisory core of the application. It runs one
// primary task concurrently with a set of invariant watchers derived from
// predicates over a shared state snapshot. The first branch to complete wins
// the race and every other branch is cancelled cooperatively; if a watcher
// wins, all invariants are re-evaluated against one fresh snapshot and the
// registered violation handlers run sequentially with the offending tags.
//
// Definitions are built through an immutable staged builder: every builder
// method returns a new value, so intermediate stages can be retained, forked,
// and reused for independent runs.
package guard
