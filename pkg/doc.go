// Package pkg holds the conceptmerge libraries.
//
// # Overview
//
// Conceptmerge combines per-course concept maps into one graph. The pkg
// directory is organized by pipeline stage:
//
//  1. [source] - Extract the embedded graph from a course page
//  2. [graph] - Node, edge and combined-graph types; namespacing; JSON I/O
//  3. [edges] - Undirected edge set with tag union
//  4. [crossref] - Cross-course links from spreadsheet exports, via [tabular] and [ident]
//  5. [layout] - Row and ring coordinates
//  6. [pipeline] - Orchestration of the stages above
//
// Supporting packages: [config] (TOML/HCL files), [render/nodelink] (DOT and
// SVG), [cache] (rendered SVG for the HTTP server), [observability] (stage
// hooks), [errors] (coded errors) and [buildinfo].
//
// # Architecture
//
//	map_6A.html   map_6C.html
//	     ↓             ↓
//	  [source]      [source]
//	     ↓             ↓
//	  [graph] Namespace (6A:…, 6C:… with module offset)
//	           ↓
//	  [edges] Set ← [crossref] "6A-6C connections/*.csv"
//	           ↓
//	  [layout] Rows + Rings
//	           ↓
//	  graph_6AC.json
//
// # Quick Start
//
//	runner := pipeline.NewRunner(logger)
//	res, err := runner.Build(ctx, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if err := graph.WriteFile(res.Graph, pipeline.DefaultOutput); err != nil {
//	    return err
//	}
//	fmt.Println(res.Summary(pipeline.DefaultOutput))
package pkg
