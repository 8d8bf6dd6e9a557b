package ir

// LocalConfig is a configuration parameter private to a module.
// Value is an expression and is not re-evaluated when global configs change.
type LocalConfig struct {
	Name    string
	Value   string
	Comment string
}

// BundleMember is a typed member of a bundle, also used for storages.
type BundleMember struct {
	Name       string
	Comment    string
	Type       string
	Value      string   // default value, basic and uint types only
	UintLength string   // bit width, uint types only
	Dims       []string // array dimensions, outermost first
}

// BundleEnumMember is an enumerated constant of a bundle.
type BundleEnumMember struct {
	Name    string
	Comment string
	Value   string
}

// BundleItem is a named composite data-type declaration.
// When IsAlias is set, Members holds the single alias target; the lists are
// still carried and serialized as-is.
type BundleItem struct {
	Name        string
	Comment     string
	IsAlias     bool
	Members     []BundleMember
	EnumMembers []BundleEnumMember
}

// PortArg is one argument or return value of a request/service port.
type PortArg struct {
	Name    string
	Type    string
	Comment string
}

// ReqServ is the signature of a request (caller) or service (callee) port.
type ReqServ struct {
	Name         string
	Comment      string
	HasHandshake bool
	Args         []PortArg
	Rets         []PortArg
}

// PipePort is a pipe input or output on a module interface.
type PipePort struct {
	Name    string
	Type    string
	Comment string
}

// Instance is a named instantiation of a module inside a parent module.
type Instance struct {
	Name                 string
	Comment              string
	ModuleName           string
	LocalConfigOverrides map[string]string // config name -> value expression
}

// Pipe is a streaming channel descriptor. Sizes are expressions.
type Pipe struct {
	Name         string
	Comment      string
	Type         string
	InputSize    string
	OutputSize   string
	BufferSize   string
	Latency      string
	HasHandshake bool
	HasValid     bool // only meaningful without handshake
}

// Storage is a state element of a module. It shares the bundle member shape.
type Storage = BundleMember

// Storage categories.
const (
	StorageRegular   = "regular"
	StorageRegister  = "register"
	StorageTemporary = "temporary"
)

// TickCodeBlock is a user code block scheduled alongside instances.
// Its name shares the ordering namespace with instance names.
type TickCodeBlock struct {
	Name      string
	Comment   string
	Codelines []string
}

// TopInterface is the pseudo-instance name for the enclosing module's own ports.
const TopInterface = "__top__"

// ReqServConnection connects a request port to a service port.
// When an instance is TopInterface, the name refers to the parent's
// service (for ReqInstance) or request (for ServInstance).
type ReqServConnection struct {
	ReqInstance  string
	ReqName      string
	ServInstance string
	ServName     string
}

// ModulePipeConnection connects an instance pipe port to a pipe instance,
// or to a top-level pipe port when PipeInstance is TopInterface.
type ModulePipeConnection struct {
	Instance         string
	InstancePipePort string
	PipeInstance     string
	TopPipePort      string
}

// SequenceConnection is an ordered pair of instances, used for both stall
// relations and update-order constraints.
type SequenceConnection struct {
	Former string
	Latter string
}
