// Package blueprint declares the lab as a static graph of deployment modules
// and compiles it to ARM templates.
//
// Modules are grouped into four layers (foundation, compute, monitoring,
// governance) and ordered within a layer by step. A module may only consume
// outputs of modules in an earlier layer, or of a lower step in its own
// layer, so the graph is acyclic by construction and [Graph.Validate]
// rejects anything else. [Graph.Compile] renders one main template where
// every module is a nested deployment wired to its producers through
// reference() and dependsOn.
package blueprint
