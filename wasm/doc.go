// Package wasm walks the section layout of WebAssembly core modules.
//
// It does not decode function bodies or type sections. A module is read as
// a header followed by a sequence of payloads, each carrying its section ID,
// its raw bytes and, for custom sections, its name:
//
//	r, err := wasm.NewSectionReader(data)
//	if err != nil {
//	    return err
//	}
//	for {
//	    sec, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    if sec.IsCustom() {
//	        fmt.Println(sec.Name, len(sec.Data))
//	    }
//	}
//
// Custom sections can be appended to an existing module with
// AppendCustomSection, which is how interface fragments are embedded
// into test fixtures.
//
// # LEB128 Encoding
//
// The package provides the LEB128 utilities used by the component decoder:
//
//	n, err := wasm.ReadLEB128u(r)    // Unsigned
//	n, err := wasm.ReadLEB128s64(r)  // Signed
package wasm
