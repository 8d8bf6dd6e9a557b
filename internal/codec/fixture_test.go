package codec

import "github.com/roach88/hwir/internal/ir"

// goldenModule is a module touching every part of the document.
func goldenModule() *ir.Module {
	return &ir.Module{
		ModuleBase: ir.ModuleBase{
			Name:         "Top",
			Comment:      "top level",
			LocalConfigs: []ir.LocalConfig{{Name: "WIDTH", Value: "32", Comment: "data width"}},
			LocalBundles: []ir.BundleItem{{
				Name:    "Packet",
				Comment: "network packet",
				Members: []ir.BundleMember{{Name: "data", Type: "uint64"}},
			}},
			Requests: []ir.ReqServ{{
				Name:         "mem_read",
				HasHandshake: true,
				Args:         []ir.PortArg{{Name: "addr", Type: "uint32"}},
				Rets:         []ir.PortArg{{Name: "data", Type: "uint64"}},
			}},
			Services:    []ir.ReqServ{{Name: "tick_in", Comment: "external tick"}},
			PipeInputs:  []ir.PipePort{{Name: "in0", Type: "Packet", Comment: "input stream"}},
			PipeOutputs: []ir.PipePort{{Name: "out0", Type: "Packet"}},
		},
		PipeInstances: []ir.Pipe{{
			Name: "fifo", Type: "Packet",
			InputSize: "1", OutputSize: "1", BufferSize: "4", Latency: "1",
			HasHandshake: true,
		}},
		Instances: []ir.Instance{
			{Name: "alu", ModuleName: "Alu", LocalConfigOverrides: map[string]string{"WIDTH": "64"}},
			{Name: "ram", Comment: "main memory", ModuleName: "Ram"},
			{Name: "dbg", ModuleName: "Missing"},
		},
		UserTickCodeBlocks: []ir.TickCodeBlock{{Name: "blk", Comment: "post update", Codelines: []string{"x = 1;"}}},
		ServCodelines: map[string][]string{
			"tick_in": {"", "alu.step();"},
			"unused":  {"  "},
		},
		ReqCodelines: map[string]map[string][]string{
			"alu": {"mem_read": {"data = ram.read(addr);"}},
		},
		Storages:     []ir.Storage{{Name: "counter", Type: "uint32", Value: "0"}},
		StorageNexts: []ir.Storage{{Name: "state", Type: "uint8", Dims: []string{"4"}}},
		StorageTmps:  []ir.Storage{{Name: "scratch", Type: "Packet"}},
		ReqConnections: map[string][]ir.ReqServConnection{
			"alu":           {{ReqInstance: "alu", ReqName: "mem_read", ServInstance: "ram", ServName: "read"}},
			ir.TopInterface: {{ReqInstance: ir.TopInterface, ReqName: "tick_in", ServInstance: "alu", ServName: "step"}},
		},
		ModPipeConnections: map[string][]ir.ModulePipeConnection{
			"alu": {{Instance: "alu", InstancePipePort: "result", PipeInstance: ir.TopInterface, TopPipePort: "out0"}},
		},
		StalledConnections: []ir.SequenceConnection{{Former: "ram", Latter: "alu"}},
		UpdateConstraints:  []ir.SequenceConnection{{Former: "alu", Latter: "ram"}},
	}
}

// goldenLibrary resolves Alu and Ram; Missing stays unresolved.
func goldenLibrary() *ir.ModuleLib {
	lib := ir.NewModuleLib()
	lib.Add(&ir.Module{
		ModuleBase: ir.ModuleBase{
			Name:         "Alu",
			Comment:      "arithmetic unit",
			LocalConfigs: []ir.LocalConfig{{Name: "WIDTH", Value: "32"}},
			Requests: []ir.ReqServ{{
				Name:         "mem_read",
				HasHandshake: true,
				Args:         []ir.PortArg{{Name: "addr", Type: "uint32"}},
				Rets:         []ir.PortArg{{Name: "data", Type: "uint64"}},
			}},
			Services: []ir.ReqServ{{Name: "step"}},
		},
		Instances: []ir.Instance{{Name: "inner", ModuleName: "Inner"}},
	})
	lib.Add(&ir.ExternalModule{
		ModuleBase: ir.ModuleBase{
			Name:    "Ram",
			Comment: "external ram",
			Services: []ir.ReqServ{{
				Name:         "read",
				HasHandshake: true,
				Args:         []ir.PortArg{{Name: "addr", Type: "uint32"}},
				Rets:         []ir.PortArg{{Name: "data", Type: "uint64"}},
			}},
		},
		Directory: "ext/ram",
	})
	lib.Add(&ir.Module{ModuleBase: ir.ModuleBase{Name: "Inner", Comment: "never expanded"}})
	return lib
}
