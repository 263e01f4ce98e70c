// Package witxbindgen extracts component interface descriptions embedded in
// WebAssembly modules and generates Go bindings for them.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	witxbindgen/
//	├── wasm/        Core module header check, section iteration, custom section encoding
//	├── witx/        Interface IR: type and resource arenas, functions, variant shapes
//	├── component/   Decoder for component-binary type encodings
//	├── extract/     Custom section selection and fragment merging
//	├── bindgen/     Type mapping to Go and binding/stub generation
//	├── witgo/       Generic runtime types referenced by generated code
//	├── harness/     Fixture discovery and per-fixture generation
//	├── config/      TOML configuration
//	├── errors/      Structured error types
//	└── cmd/witx-bindgen/  Command line interface
//
// # Quick Start
//
// Extract the interfaces of a module and print the Go method of every
// exported function:
//
//	mi, err := extract.Extract(wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, name := range mi.Interfaces.ExportNames() {
//	    iface := mi.Interfaces.Exports[name]
//	    m := bindgen.NewMapper(iface)
//	    for i := range iface.Functions {
//	        fmt.Println(m.Method(&iface.Functions[i]))
//	    }
//	}
//
// Interfaces are carried in custom sections whose name starts with
// "component-type". Every such section is decoded into a fragment and the
// fragments are merged in document order. A second default interface, or
// an import or export name seen twice, fails the whole extraction. The
// returned module bytes still contain the interface sections.
//
// # Generated Code
//
// For each interface the generator writes a package holding its named
// types, its resource handle types and a Go interface with one method per
// function. For the default and exported interfaces it also writes
// placeholder implementations whose methods never return, so that harness
// code referring to them type-checks.
package witxbindgen
