// Package nodelink renders production graphs as node-link diagrams.
//
// # Overview
//
// Each node becomes a Graphviz node and each ingredient edge an arrow from
// consumer to supplier. Nodes of equal depth share a rank, so the drawing
// has the same tiers as [dag.Graph.Levels].
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Styling
//
// The root is a double octagon, intermediates are rounded boxes labelled
// with their recipe and machine count, and terminals are grey ellipses:
// the requirements still open.
package nodelink
