package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// EncodeModuleBase returns the interface view of a module. Bundles and
// ports are summarized, not expanded. Every key is always present.
func EncodeModuleBase(b *ir.ModuleBase) document.Object {
	// Configs keep their declaration order
	configs := make(document.Array, 0, len(b.LocalConfigs))
	for _, c := range b.LocalConfigs {
		configs = append(configs, document.Object{
			"name":    document.String(c.Name),
			"value":   document.String(c.Value),
			"comment": document.String(c.Comment),
		})
	}

	// Bundles are listed by name and comment only
	bundles := make(document.Array, 0, len(b.LocalBundles))
	for _, bundle := range b.LocalBundles {
		bundles = append(bundles, document.Object{
			"name":    document.String(bundle.Name),
			"comment": document.String(bundle.Comment),
		})
	}

	return document.Object{
		"comment":       document.String(b.Comment),
		"local_configs": configs,
		"local_bundles": bundles,
		"requests":      summarizePorts(b.Requests),
		"services":      summarizePorts(b.Services),
		"pipein":        summarizePipePorts(b.PipeInputs),
		"pipeout":       summarizePipePorts(b.PipeOutputs),
	}
}

// summarizePorts lists request or service ports with their full signature
// in place of the argument lists.
func summarizePorts(ports []ir.ReqServ) document.Array {
	arr := make(document.Array, 0, len(ports))
	for i := range ports {
		arr = append(arr, document.Object{
			"name":    document.String(ports[i].Name),
			"comment": document.String(ports[i].Comment),
			"sig":     document.String(ports[i].SignatureFull()),
		})
	}
	return arr
}

// summarizePipePorts lists pipe ports by name, comment and type.
func summarizePipePorts(ports []ir.PipePort) document.Array {
	arr := make(document.Array, 0, len(ports))
	for _, p := range ports {
		arr = append(arr, document.Object{
			"name":    document.String(p.Name),
			"comment": document.String(p.Comment),
			"type":    document.String(p.Type),
		})
	}
	return arr
}
