package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/hwir/internal/codec"
	"github.com/roach88/hwir/internal/ir"
)

// CompileModule parses a CUE value into a module definition.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the module struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`module: Alu: { comment: "adder" }`)
//	def, err := CompileModule(v.LookupPath(cue.ParsePath("module.Alu")))
//
// A module with `external: true` compiles to *ir.ExternalModule and may only
// declare its interface; anything else compiles to *ir.Module.
func CompileModule(v cue.Value) (ir.ModuleDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Module name comes from the struct label (the path selector)
	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].Unquoted()
	}
	path := "module." + name
	if !ir.IsValidIdentifier(name) {
		return nil, &CompileError{Field: path, Message: fmt.Sprintf("%q is not a valid module name", name), Pos: v.Pos()}
	}

	// Interface: configs, bundles, ports and pipe ports
	base, err := compileBase(v, name, path)
	if err != nil {
		return nil, err
	}

	// External modules are implemented outside the library (required to be
	// interface-only); the directory tells code generation where to find them
	external, err := optBool(v, "external", path)
	if err != nil {
		return nil, err
	}
	if external {
		dir, err := optString(v, "directory", path)
		if err != nil {
			return nil, err
		}
		for _, field := range topologyFields {
			if f, ok := lookup(v, field); ok {
				return nil, &CompileError{
					Field:   path + "." + field,
					Message: "external modules declare an interface only",
					Pos:     f.Pos(),
				}
			}
		}
		return &ir.ExternalModule{ModuleBase: *base, Directory: dir}, nil
	}

	// Internal topology (optional, any part can be empty)
	mod := &ir.Module{ModuleBase: *base}
	if err := compileTopology(v, path, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// topologyFields are the module fields that describe internal structure.
// An external module declaring any of them is rejected.
var topologyFields = []string{
	"pipes", "instances", "tick", "serv_code", "req_code",
	"storages", "registers", "temps",
	"connections", "pipe_connections", "stalls", "sequences",
}

// compileBase parses the interface part shared by internal and external
// modules. Collections keep CUE declaration order.
func compileBase(v cue.Value, name, path string) (*ir.ModuleBase, error) {
	base := &ir.ModuleBase{Name: name}
	var err error

	// Parse comment (optional)
	if base.Comment, err = optString(v, "comment", path); err != nil {
		return nil, err
	}

	// Parse configs (optional) - either {value, comment?} or a bare value
	err = eachField(v, "configs", path, func(label string, fv cue.Value, fpath string) error {
		cfg := ir.LocalConfig{Name: label}
		var err error
		// shorthand: WIDTH: "32"
		if fv.IncompleteKind() != cue.StructKind {
			if cfg.Value, err = exprText(fv, fpath); err != nil {
				return err
			}
			base.LocalConfigs = append(base.LocalConfigs, cfg)
			return nil
		}
		// full form: WIDTH: {value: "32", comment: "..."}
		value, ok := lookup(fv, "value")
		if !ok {
			return &CompileError{Field: fpath + ".value", Message: "config value is required", Pos: fv.Pos()}
		}
		if cfg.Value, err = exprText(value, fpath+".value"); err != nil {
			return err
		}
		if cfg.Comment, err = optString(fv, "comment", fpath); err != nil {
			return err
		}
		base.LocalConfigs = append(base.LocalConfigs, cfg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Parse bundles (optional)
	err = eachField(v, "bundles", path, func(label string, fv cue.Value, fpath string) error {
		b, err := CompileBundle(fv, label, fpath)
		if err != nil {
			return err
		}
		base.LocalBundles = append(base.LocalBundles, *b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Parse request/service ports and pipe ports (all optional)
	if base.Requests, err = compilePorts(v, "requests", path); err != nil {
		return nil, err
	}
	if base.Services, err = compilePorts(v, "services", path); err != nil {
		return nil, err
	}
	if base.PipeInputs, err = compilePipePorts(v, "pipein", path); err != nil {
		return nil, err
	}
	if base.PipeOutputs, err = compilePipePorts(v, "pipeout", path); err != nil {
		return nil, err
	}
	return base, nil
}

// CompileBundle parses a bundle declaration.
//
// Supports:
//   - struct bundles: members plus optional enums
//   - alias bundles (alias: true): exactly one member naming the target type
//
// Member and enum values stay expression text.
func CompileBundle(v cue.Value, name, path string) (*ir.BundleItem, error) {
	b := &ir.BundleItem{Name: name}
	var err error

	// Parse comment and alias flag (optional)
	if b.Comment, err = optString(v, "comment", path); err != nil {
		return nil, err
	}
	if b.IsAlias, err = optBool(v, "alias", path); err != nil {
		return nil, err
	}

	// Parse members in list order (array rank order of dims is preserved)
	err = eachElem(v, "members", path, func(ev cue.Value, epath string) error {
		m, err := compileMember(ev, epath)
		if err != nil {
			return err
		}
		b.Members = append(b.Members, m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Parse enum constants (optional)
	err = eachElem(v, "enums", path, func(ev cue.Value, epath string) error {
		var e ir.BundleEnumMember
		var err error
		if e.Name, err = reqString(ev, "name", epath); err != nil {
			return err
		}
		if e.Comment, err = optString(ev, "comment", epath); err != nil {
			return err
		}
		if e.Value, err = optExpr(ev, "value", epath, ""); err != nil {
			return err
		}
		b.EnumMembers = append(b.EnumMembers, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// An alias names its target type through its single member
	if b.IsAlias && len(b.Members) != 1 {
		return nil, &CompileError{Field: path + ".members", Message: "an alias has exactly one member", Pos: v.Pos()}
	}
	return b, nil
}

// compileMember parses one bundle member or storage. Only the type is
// required; storages get their name from the field label instead.
func compileMember(v cue.Value, path string) (ir.BundleMember, error) {
	var m ir.BundleMember
	var err error
	if m.Name, err = optString(v, "name", path); err != nil {
		return m, err
	}
	// Parse type (required)
	if m.Type, err = reqString(v, "type", path); err != nil {
		return m, err
	}
	if m.Comment, err = optString(v, "comment", path); err != nil {
		return m, err
	}
	// Parse value, bit length and dims (optional expressions)
	if m.Value, err = optExpr(v, "value", path, ""); err != nil {
		return m, err
	}
	if m.UintLength, err = optExpr(v, "uint_length", path, ""); err != nil {
		return m, err
	}
	if m.Dims, err = optExprList(v, "dims", path); err != nil {
		return m, err
	}
	return m, nil
}

// compilePorts parses the request or service ports under name.
func compilePorts(v cue.Value, name, path string) ([]ir.ReqServ, error) {
	var ports []ir.ReqServ
	err := eachField(v, name, path, func(label string, fv cue.Value, fpath string) error {
		// Port name comes from the field label
		rs := ir.ReqServ{Name: label}
		var err error
		if rs.Comment, err = optString(fv, "comment", fpath); err != nil {
			return err
		}
		if rs.HasHandshake, err = optBool(fv, "handshake", fpath); err != nil {
			return err
		}
		if rs.Args, err = compilePortArgs(fv, "args", fpath); err != nil {
			return err
		}
		if rs.Rets, err = compilePortArgs(fv, "rets", fpath); err != nil {
			return err
		}
		ports = append(ports, rs)
		return nil
	})
	return ports, err
}

// compilePortArgs parses an args or rets list. Unlike the document decoder,
// which drops incomplete entries, the compiler requires name and type.
func compilePortArgs(v cue.Value, name, path string) ([]ir.PortArg, error) {
	var args []ir.PortArg
	err := eachElem(v, name, path, func(ev cue.Value, epath string) error {
		var a ir.PortArg
		var err error
		if a.Name, err = reqString(ev, "name", epath); err != nil {
			return err
		}
		if a.Type, err = reqString(ev, "type", epath); err != nil {
			return err
		}
		if a.Comment, err = optString(ev, "comment", epath); err != nil {
			return err
		}
		args = append(args, a)
		return nil
	})
	return args, err
}

// compilePipePorts parses pipein or pipeout ports; type is required.
func compilePipePorts(v cue.Value, name, path string) ([]ir.PipePort, error) {
	var ports []ir.PipePort
	err := eachField(v, name, path, func(label string, fv cue.Value, fpath string) error {
		p := ir.PipePort{Name: label}
		var err error
		if p.Type, err = reqString(fv, "type", fpath); err != nil {
			return err
		}
		if p.Comment, err = optString(fv, "comment", fpath); err != nil {
			return err
		}
		ports = append(ports, p)
		return nil
	})
	return ports, err
}

// compileTopology parses the internal structure of a non-external module.
func compileTopology(v cue.Value, path string, mod *ir.Module) error {
	// Parse pipe instances; sizes default like a document without them
	err := eachField(v, "pipes", path, func(label string, fv cue.Value, fpath string) error {
		typ, err := reqString(fv, "type", fpath)
		if err != nil {
			return err
		}
		p := codec.NewPipe(label, typ)
		if p.Comment, err = optString(fv, "comment", fpath); err != nil {
			return err
		}
		if p.InputSize, err = optExpr(fv, "input_size", fpath, p.InputSize); err != nil {
			return err
		}
		if p.OutputSize, err = optExpr(fv, "output_size", fpath, p.OutputSize); err != nil {
			return err
		}
		if p.BufferSize, err = optExpr(fv, "buffer_size", fpath, p.BufferSize); err != nil {
			return err
		}
		if p.Latency, err = optExpr(fv, "latency", fpath, p.Latency); err != nil {
			return err
		}
		if p.HasHandshake, err = optBool(fv, "handshake", fpath); err != nil {
			return err
		}
		if p.HasValid, err = optBool(fv, "valid", fpath); err != nil {
			return err
		}
		mod.PipeInstances = append(mod.PipeInstances, p)
		return nil
	})
	if err != nil {
		return err
	}

	// Parse instances with their config overrides
	err = eachField(v, "instances", path, func(label string, fv cue.Value, fpath string) error {
		inst := ir.Instance{Name: label, LocalConfigOverrides: map[string]string{}}
		var err error
		if inst.ModuleName, err = reqString(fv, "module", fpath); err != nil {
			return err
		}
		if inst.Comment, err = optString(fv, "comment", fpath); err != nil {
			return err
		}
		err = eachField(fv, "config", fpath, func(key string, cv cue.Value, cpath string) error {
			value, err := exprText(cv, cpath)
			if err != nil {
				return err
			}
			inst.LocalConfigOverrides[key] = value
			return nil
		})
		if err != nil {
			return err
		}
		mod.Instances = append(mod.Instances, inst)
		return nil
	})
	if err != nil {
		return err
	}

	// Tick blocks share the update-order namespace with instances.
	err = eachField(v, "tick", path, func(label string, fv cue.Value, fpath string) error {
		if mod.Instance(label) != nil {
			return &CompileError{
				Field:   fpath,
				Message: fmt.Sprintf("tick block name %q is already used by an instance", label),
				Pos:     fv.Pos(),
			}
		}
		blk := ir.TickCodeBlock{Name: label}
		var err error
		if blk.Comment, err = optString(fv, "comment", fpath); err != nil {
			return err
		}
		if blk.Codelines, err = optStringList(fv, "code", fpath); err != nil {
			return err
		}
		mod.UserTickCodeBlocks = append(mod.UserTickCodeBlocks, blk)
		return nil
	})
	if err != nil {
		return err
	}

	if err := compileCode(v, path, mod); err != nil {
		return err
	}

	// Parse storages of the three categories
	for _, category := range []struct {
		field string
		out   *[]ir.Storage
	}{
		{"storages", &mod.Storages},
		{"registers", &mod.StorageNexts},
		{"temps", &mod.StorageTmps},
	} {
		err := eachField(v, category.field, path, func(label string, fv cue.Value, fpath string) error {
			s, err := compileMember(fv, fpath)
			if err != nil {
				return err
			}
			s.Name = label
			*category.out = append(*category.out, s)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := compileConnections(v, path, mod); err != nil {
		return err
	}

	// Stalls and sequences are passed through to the update-order resolver
	if mod.StalledConnections, err = compileSequences(v, "stalls", path); err != nil {
		return err
	}
	if mod.UpdateConstraints, err = compileSequences(v, "sequences", path); err != nil {
		return err
	}
	return nil
}

// compileCode parses serv_code (keyed by service name) and req_code
// (keyed by instance, then request name).
func compileCode(v cue.Value, path string, mod *ir.Module) error {
	err := eachField(v, "serv_code", path, func(label string, fv cue.Value, fpath string) error {
		lines, err := stringList(fv, fpath)
		if err != nil {
			return err
		}
		if mod.ServCodelines == nil {
			mod.ServCodelines = make(map[string][]string)
		}
		mod.ServCodelines[label] = lines
		return nil
	})
	if err != nil {
		return err
	}

	return eachField(v, "req_code", path, func(inst string, iv cue.Value, ipath string) error {
		iter, err := iv.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			req := iter.Selector().Unquoted()
			lines, err := stringList(iter.Value(), ipath+"."+req)
			if err != nil {
				return err
			}
			if mod.ReqCodelines == nil {
				mod.ReqCodelines = make(map[string]map[string][]string)
			}
			if mod.ReqCodelines[inst] == nil {
				mod.ReqCodelines[inst] = make(map[string][]string)
			}
			mod.ReqCodelines[inst][req] = lines
		}
		return nil
	})
}

// splitPort splits "inst.port" into its parts. A bare port names the
// enclosing module's own interface.
func splitPort(ref string) (inst, port string) {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ir.TopInterface, ref
}

// compileConnections parses request/service and pipe connections.
//
// Request connections are grouped by requesting instance. A pipe connection
// binds an instance pipe port to exactly one of a pipe instance or a
// top-level pipe port.
func compileConnections(v cue.Value, path string, mod *ir.Module) error {
	err := eachElem(v, "connections", path, func(ev cue.Value, epath string) error {
		from, err := reqString(ev, "from", epath)
		if err != nil {
			return err
		}
		to, err := reqString(ev, "to", epath)
		if err != nil {
			return err
		}
		var c ir.ReqServConnection
		c.ReqInstance, c.ReqName = splitPort(from)
		c.ServInstance, c.ServName = splitPort(to)
		if mod.ReqConnections == nil {
			mod.ReqConnections = make(map[string][]ir.ReqServConnection)
		}
		mod.ReqConnections[c.ReqInstance] = append(mod.ReqConnections[c.ReqInstance], c)
		return nil
	})
	if err != nil {
		return err
	}

	return eachElem(v, "pipe_connections", path, func(ev cue.Value, epath string) error {
		port, err := reqString(ev, "port", epath)
		if err != nil {
			return err
		}
		var c ir.ModulePipeConnection
		c.Instance, c.InstancePipePort = splitPort(port)
		if c.Instance == ir.TopInterface {
			return &CompileError{Field: epath + ".port", Message: "port must be written as instance.port", Pos: ev.Pos()}
		}

		pipe, hasPipe := lookup(ev, "pipe")
		top, hasTop := lookup(ev, "top")
		switch {
		case hasPipe == hasTop:
			return &CompileError{Field: epath, Message: "exactly one of pipe or top is required", Pos: ev.Pos()}
		case hasPipe:
			if c.PipeInstance, err = pipe.String(); err != nil {
				return &CompileError{Field: epath + ".pipe", Message: "must be a string", Pos: pipe.Pos()}
			}
		default:
			c.PipeInstance = ir.TopInterface
			if c.TopPipePort, err = top.String(); err != nil {
				return &CompileError{Field: epath + ".top", Message: "must be a string", Pos: top.Pos()}
			}
		}
		if mod.ModPipeConnections == nil {
			mod.ModPipeConnections = make(map[string][]ir.ModulePipeConnection)
		}
		mod.ModPipeConnections[c.Instance] = append(mod.ModPipeConnections[c.Instance], c)
		return nil
	})
}

// compileSequences reads a list of [former, latter] pairs.
func compileSequences(v cue.Value, name, path string) ([]ir.SequenceConnection, error) {
	var seqs []ir.SequenceConnection
	err := eachElem(v, name, path, func(ev cue.Value, epath string) error {
		pair, err := stringList(ev, epath)
		if err != nil {
			return err
		}
		if len(pair) != 2 {
			return &CompileError{Field: epath, Message: "must be a [former, latter] pair", Pos: ev.Pos()}
		}
		seqs = append(seqs, ir.SequenceConnection{Former: pair[0], Latter: pair[1]})
		return nil
	})
	return seqs, err
}
