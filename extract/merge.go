package extract

import (
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/witx"
)

// Fold merges a fragment into the aggregate.
//
// A second default interface, or an import or export name already present
// in the aggregate, is an error. Same-named interfaces are never merged.
// The aggregate is updated in place and is not rolled back on failure, so
// any error must abort the extraction it belongs to.
func Fold(agg *witx.ComponentInterfaces, frag *witx.Fragment) error {
	if frag.Default != nil {
		if agg.Default != nil {
			return errors.DuplicateDefault()
		}
		agg.Default = frag.Default
	}
	if err := foldNamed(agg.Imports, frag.Imports, errors.KindDuplicateImport, "import"); err != nil {
		return err
	}
	return foldNamed(agg.Exports, frag.Exports, errors.KindDuplicateExport, "export")
}

func foldNamed(dst map[string]*witx.Interface, src []witx.NamedInterface, kind errors.Kind, collection string) error {
	for _, ni := range src {
		if _, exists := dst[ni.Name]; exists {
			return errors.DuplicateName(kind, collection, ni.Name)
		}
		dst[ni.Name] = ni.Interface
	}
	return nil
}
