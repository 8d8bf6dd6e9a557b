package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/hwir/internal/ir"
)

// CompileLibrary compiles every module under the top-level "module" struct
// of v. It stops at the first error.
func CompileLibrary(v cue.Value) (*ir.ModuleLib, error) {
	lib := ir.NewModuleLib()

	modulesVal := v.LookupPath(cue.ParsePath("module"))
	if !modulesVal.Exists() {
		return lib, nil
	}

	iter, err := modulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		def, err := CompileModule(iter.Value())
		if err != nil {
			return nil, err
		}
		lib.Add(def)
	}
	return lib, nil
}
