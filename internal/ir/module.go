package ir

import "sort"

// ModuleBase is the interface view of a module: everything another module
// can see when it instantiates this one.
type ModuleBase struct {
	Name         string
	Comment      string
	LocalConfigs []LocalConfig
	LocalBundles []BundleItem
	Requests     []ReqServ
	Services     []ReqServ
	PipeInputs   []PipePort
	PipeOutputs  []PipePort
}

// Base returns the module's interface view.
func (b *ModuleBase) Base() *ModuleBase { return b }

// Module is a complete module definition with internal topology.
type Module struct {
	ModuleBase

	// Declaration order is kept; it breaks ties in the update order.
	PipeInstances      []Pipe
	Instances          []Instance
	UserTickCodeBlocks []TickCodeBlock

	// ServCodelines maps service name to its code lines.
	ServCodelines map[string][]string
	// ReqCodelines maps instance name to request name to code lines.
	ReqCodelines map[string]map[string][]string

	// Storages by category: regular, register (next) and temporary.
	Storages     []Storage
	StorageNexts []Storage
	StorageTmps  []Storage

	// ReqConnections and ModPipeConnections are keyed by the source instance.
	ReqConnections     map[string][]ReqServConnection
	ModPipeConnections map[string][]ModulePipeConnection

	// Both are former-before-latter constraints on the update order.
	StalledConnections []SequenceConnection
	UpdateConstraints  []SequenceConnection
}

// IsExternal reports whether the module is interface-only.
func (m *Module) IsExternal() bool { return false }

// Instance returns the named instance, or nil.
func (m *Module) Instance(name string) *Instance {
	for i := range m.Instances {
		if m.Instances[i].Name == name {
			return &m.Instances[i]
		}
	}
	return nil
}

// TickCodeBlock returns the named user tick code block, or nil.
func (m *Module) TickCodeBlock(name string) *TickCodeBlock {
	for i := range m.UserTickCodeBlocks {
		if m.UserTickCodeBlocks[i].Name == name {
			return &m.UserTickCodeBlocks[i]
		}
	}
	return nil
}

// ExternalModule is a module implemented outside the IR, known only by its
// interface and the directory holding its sources.
type ExternalModule struct {
	ModuleBase
	Directory string
}

// IsExternal reports whether the module is interface-only.
func (m *ExternalModule) IsExternal() bool { return true }

// ModuleDef is implemented by *Module and *ExternalModule.
type ModuleDef interface {
	Base() *ModuleBase
	IsExternal() bool
}

// ModuleLib is a registry of module definitions keyed by name.
// It is not safe for concurrent mutation; concurrent reads are fine.
type ModuleLib struct {
	modules map[string]ModuleDef
}

// NewModuleLib returns an empty library.
func NewModuleLib() *ModuleLib {
	return &ModuleLib{modules: make(map[string]ModuleDef)}
}

// Add registers a module definition, replacing any previous one of the same name.
func (l *ModuleLib) Add(def ModuleDef) {
	if l.modules == nil {
		l.modules = make(map[string]ModuleDef)
	}
	l.modules[def.Base().Name] = def
}

// Get returns the definition registered under name.
func (l *ModuleLib) Get(name string) (ModuleDef, bool) {
	if l == nil {
		return nil, false
	}
	// A nil library behaves as an empty one
	def, ok := l.modules[name]
	return def, ok
}

// LookupModule returns the interface view of the named module.
func (l *ModuleLib) LookupModule(name string) (*ModuleBase, bool) {
	def, ok := l.Get(name)
	if !ok {
		return nil, false
	}
	return def.Base(), true
}

// Module returns the named module when it is a full (non-external) module.
func (l *ModuleLib) Module(name string) (*Module, bool) {
	def, ok := l.Get(name)
	if !ok {
		return nil, false
	}
	mod, ok := def.(*Module)
	return mod, ok
}

// Names returns all registered module names in sorted order.
func (l *ModuleLib) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.modules))
	for name := range l.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered modules.
func (l *ModuleLib) Len() int {
	if l == nil {
		return 0
	}
	return len(l.modules)
}
