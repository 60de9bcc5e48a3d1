// Package scenario is the configuration layer of the application. It loads
// one or more HCL files declaring the shared state's initial value, the state
// sources, the supervised task, the invariants (as cty expressions over the
// `state` variable), and the violation handlers, and compiles them into the
// form the guard core and the runner registry consume.
//
// All structural validation happens here, at load time: duplicate or reserved
// invariant tags, missing or repeated singleton blocks, and clauses that do
// not produce a boolean are rejected before any execution starts.
package scenario
