package codec

import (
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// ModuleLookup resolves a module name to its interface view.
// *ir.ModuleLib implements it.
type ModuleLookup interface {
	LookupModule(name string) (*ir.ModuleBase, bool)
}

// OrderResolver computes the update order of a module's instances and user
// tick code blocks.
type OrderResolver interface {
	UpdateOrder(mod *ir.Module) ([]string, error)
}

// OrderResolverFunc adapts a function to OrderResolver.
type OrderResolverFunc func(mod *ir.Module) ([]string, error)

// UpdateOrder calls f(mod).
func (f OrderResolverFunc) UpdateOrder(mod *ir.Module) ([]string, error) {
	return f(mod)
}

// ModuleEncoder encodes complete modules. Library and Resolver are optional:
// without a library no instance target is expanded, and without a resolver
// every instance and code block gets order 0.
//
// A ModuleEncoder is safe for concurrent use as long as the library is not
// mutated during encoding.
type ModuleEncoder struct {
	Library  ModuleLookup
	Resolver OrderResolver
	Logger   *slog.Logger
}

// discardLogger is used when ModuleEncoder.Logger is nil.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (e *ModuleEncoder) logger() *slog.Logger {
	if e.Logger == nil {
		return discardLogger
	}
	return e.Logger
}

// Encode flattens mod into one document.
func (e *ModuleEncoder) Encode(mod *ir.Module) document.Object {
	// Interface keys first, then the topology
	doc := EncodeModuleBase(&mod.ModuleBase)

	// Pipe instances carry their name inline, unlike standalone pipes
	pipes := make(document.Array, 0, len(mod.PipeInstances))
	for i := range mod.PipeInstances {
		p := EncodePipe(&mod.PipeInstances[i])
		p["name"] = document.String(mod.PipeInstances[i].Name)
		pipes = append(pipes, p)
	}
	doc["pipes"] = pipes

	doc["instances"], doc["user_tick_codeblocks"] = e.encodeOrdered(mod)
	doc["serv_codelines"] = encodeServCodelines(mod.ServCodelines)
	doc["req_codelines"] = encodeReqCodelines(mod.ReqCodelines)
	doc["storages"] = encodeStorages(mod)
	doc["connections"] = encodeConnections(mod.ReqConnections)
	doc["pipe_connections"] = encodePipeConnections(mod.ModPipeConnections)
	doc["stalled_connections"] = encodeSequences(mod.StalledConnections)
	doc["update_constraints"] = encodeSequences(mod.UpdateConstraints)
	return doc
}

// encodeOrdered emits instances and user tick code blocks tagged with their
// update order. A total order yields 1-based positions in that order;
// anything else falls back to container order with order 0.
func (e *ModuleEncoder) encodeOrdered(mod *ir.Module) (document.Array, document.Array) {
	instances := make(document.Array, 0, len(mod.Instances))
	blocks := make(document.Array, 0, len(mod.UserTickCodeBlocks))

	order, ok := e.totalOrder(mod)
	// Fallback: container order, every entry order 0
	if !ok {
		for i := range mod.Instances {
			instances = append(instances, e.encodeInstance(&mod.Instances[i], 0))
		}
		for i := range mod.UserTickCodeBlocks {
			blocks = append(blocks, encodeTickBlock(&mod.UserTickCodeBlocks[i], 0))
		}
		return instances, blocks
	}

	for pos, name := range order {
		if inst := mod.Instance(name); inst != nil {
			instances = append(instances, e.encodeInstance(inst, pos+1))
		} else {
			blocks = append(blocks, encodeTickBlock(mod.TickCodeBlock(name), pos+1))
		}
	}
	return instances, blocks
}

// totalOrder returns the resolver's order when it names every instance and
// code block exactly once.
func (e *ModuleEncoder) totalOrder(mod *ir.Module) ([]string, bool) {
	log := e.logger().With("module", mod.Name)
	if e.Resolver == nil {
		log.Debug("no update order resolver, using declaration order")
		return nil, false
	}
	order, err := e.Resolver.UpdateOrder(mod)
	if err != nil {
		log.Debug("update order unresolved, using declaration order", "error", err)
		return nil, false
	}

	// The order must be a permutation of instances and code blocks
	pending := make(map[string]bool, len(mod.Instances)+len(mod.UserTickCodeBlocks))
	for _, inst := range mod.Instances {
		pending[inst.Name] = true
	}
	for _, blk := range mod.UserTickCodeBlocks {
		pending[blk.Name] = true
	}
	if len(pending) != len(mod.Instances)+len(mod.UserTickCodeBlocks) || len(order) != len(pending) {
		log.Debug("update order is partial, using declaration order",
			"ordered", len(order), "expected", len(mod.Instances)+len(mod.UserTickCodeBlocks))
		return nil, false
	}
	for _, name := range order {
		if !pending[name] {
			log.Debug("update order names unknown or repeated entry, using declaration order", "name", name)
			return nil, false
		}
		delete(pending, name)
	}
	return order, true
}

// encodeInstance emits an instance with its target module's interface
// nested one level deep. Only EncodeModuleBase is called for the target.
func (e *ModuleEncoder) encodeInstance(inst *ir.Instance, order int) document.Object {
	doc := EncodeInstance(inst)
	doc["name"] = document.String(inst.Name)
	doc["order"] = document.Int(order)
	doc["module"] = document.String(inst.ModuleName)

	// Without a library the target stays a plain name
	if e.Library == nil {
		return doc
	}
	target, ok := e.Library.LookupModule(inst.ModuleName)
	if !ok {
		e.logger().Debug("instance target not in library",
			"instance", inst.Name, "module", inst.ModuleName)
		return doc
	}
	doc["module"] = EncodeModuleBase(target)
	return doc
}

// encodeTickBlock emits a code block's name, order and comment. The code
// lines themselves are not part of the module document.
func encodeTickBlock(blk *ir.TickCodeBlock, order int) document.Object {
	doc := document.Object{
		"name":  document.String(blk.Name),
		"order": document.Int(order),
	}
	putComment(doc, blk.Comment)
	return doc
}

// sortedKeys returns the keys of m in byte order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeServCodelines emits one entry per service with non-blank code,
// sorted by service name. Blank lines are dropped.
func encodeServCodelines(lines map[string][]string) document.Array {
	arr := document.Array{}
	for _, serv := range sortedKeys(lines) {
		if ir.IsCodeLineEmpty(lines[serv]) {
			continue
		}
		arr = append(arr, document.Object{
			"name":      document.String(serv),
			"codelines": document.Strings(ir.NonBlankLines(lines[serv])),
		})
	}
	return arr
}

// encodeReqCodelines is encodeServCodelines keyed by instance, then request.
func encodeReqCodelines(lines map[string]map[string][]string) document.Array {
	arr := document.Array{}
	for _, inst := range sortedKeys(lines) {
		for _, req := range sortedKeys(lines[inst]) {
			code := lines[inst][req]
			if ir.IsCodeLineEmpty(code) {
				continue
			}
			arr = append(arr, document.Object{
				"instance":  document.String(inst),
				"name":      document.String(req),
				"codelines": document.Strings(ir.NonBlankLines(code)),
			})
		}
	}
	return arr
}

// encodeStorages flattens the three storage lists, regular first, tagging
// each entry with its category.
func encodeStorages(mod *ir.Module) document.Array {
	arr := make(document.Array, 0, len(mod.Storages)+len(mod.StorageNexts)+len(mod.StorageTmps))
	add := func(storages []ir.Storage, category string) {
		for i := range storages {
			doc := EncodeStorage(&storages[i])
			doc["category"] = document.String(category)
			arr = append(arr, doc)
		}
	}
	add(mod.Storages, ir.StorageRegular)
	add(mod.StorageNexts, ir.StorageRegister)
	add(mod.StorageTmps, ir.StorageTemporary)
	return arr
}

// encodeConnections emits request connections grouped by requesting
// instance in sorted order. Within an instance declaration order is kept.
func encodeConnections(conns map[string][]ir.ReqServConnection) document.Array {
	arr := document.Array{}
	for _, inst := range sortedKeys(conns) {
		for _, c := range conns[inst] {
			arr = append(arr, document.Object{
				"req_instance":  document.String(c.ReqInstance),
				"req_name":      document.String(c.ReqName),
				"serv_instance": document.String(c.ServInstance),
				"serv_name":     document.String(c.ServName),
			})
		}
	}
	return arr
}

// encodePipeConnections follows the ordering of encodeConnections.
func encodePipeConnections(conns map[string][]ir.ModulePipeConnection) document.Array {
	arr := document.Array{}
	for _, inst := range sortedKeys(conns) {
		for _, c := range conns[inst] {
			arr = append(arr, document.Object{
				"instance":           document.String(c.Instance),
				"instance_pipe_port": document.String(c.InstancePipePort),
				"pipe_instance":      document.String(c.PipeInstance),
				"top_pipe_port":      document.String(c.TopPipePort),
			})
		}
	}
	return arr
}

// encodeSequences keeps declaration order.
func encodeSequences(seqs []ir.SequenceConnection) document.Array {
	arr := make(document.Array, 0, len(seqs))
	for _, s := range seqs {
		arr = append(arr, document.Object{
			"former": document.String(s.Former),
			"latter": document.String(s.Latter),
		})
	}
	return arr
}

// Marshal encodes mod and renders it in format.
func (e *ModuleEncoder) Marshal(mod *ir.Module, format document.Format) ([]byte, error) {
	return document.Marshal(format, e.Encode(mod))
}

// MarshalCanonical encodes mod as canonical JSON.
func (e *ModuleEncoder) MarshalCanonical(mod *ir.Module) ([]byte, error) {
	return document.MarshalCanonical(e.Encode(mod))
}

// Fingerprint returns the content fingerprint of mod's document.
func (e *ModuleEncoder) Fingerprint(mod *ir.Module) (string, error) {
	return document.Fingerprint(e.Encode(mod))
}
