// Package render provides visual output for production graphs.
//
// Node-link diagrams live in the [nodelink] subpackage: the graph is turned
// into Graphviz DOT with one rank per depth, then rendered to SVG or PNG.
package render
