package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/hwir/internal/codec"
	"github.com/roach88/hwir/internal/compiler"
	"github.com/roach88/hwir/internal/ir"
)

// LoadMode controls how errors are handled during library loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the module library compiled from a directory.
type LoadResult struct {
	Library   *ir.ModuleLib
	Warnings  []compiler.CycleWarning // instantiation loops, never fatal
	CUEValue  cue.Value
	FileCount int
}

// LoadError represents an error that occurred while loading a library.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadLibrary loads the CUE package in dir and compiles every module under
// its top-level "module" struct.
// A nil result means nothing could be compiled; otherwise the result holds
// every module that compiled, and errs the ones that did not.
func LoadLibrary(dir string, mode LoadMode) (*LoadResult, []error) {
	// Check the directory before handing it to the CUE loader
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("library directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing library directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load the directory as a single CUE package
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		Library:   ir.NewModuleLib(),
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	// Compile each module; a broken module does not stop the others
	// unless mode is LoadModeFailFast
	var errs []error
	modulesVal := value.LookupPath(cue.ParsePath("module"))
	if modulesVal.Exists() {
		iter, iterErr := modulesVal.Fields()
		if iterErr != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating modules: %v", iterErr)}}
		}
		for iter.Next() {
			def, compileErr := compiler.CompileModule(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "module."+iter.Selector().Unquoted()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Library.Add(def)
		}
	}

	if result.Library.Len() == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoModules, Message: "no modules found in library"})
	}

	// Loop analysis runs over whatever compiled
	result.Warnings = compiler.AnalyzeInstantiation(result.Library)
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// firstLoadError converts the first error of a failed load to a LoadError.
func firstLoadError(errs []error) *LoadError {
	var loadErr *LoadError
	if errors.As(errs[0], &loadErr) {
		return loadErr
	}
	return &LoadError{Code: ErrCodeGeneric, Message: errs[0].Error()}
}

// convertCompileError wraps a compiler error with its error code and
// source position. context names the module for errors without a field.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    compileErrorCode(compileErr),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeReadFailed  = "E008" // File read error
	ErrCodeStoreFailed = "E009" // Snapshot store error
	ErrCodeNoModules   = "E010" // Library declares no modules

	// Module definition errors
	ErrCodeInvalidName     = "E101" // Invalid module or member identifier
	ErrCodeInvalidExpr     = "E102" // Float or non-scalar where an expression is expected
	ErrCodeMissingField    = "E103" // Required field missing
	ErrCodeInvalidType     = "E104" // Field has the wrong kind
	ErrCodeExternalBody    = "E105" // External module declares topology
	ErrCodeInvalidTopology = "E106" // Malformed connection or sequence
	ErrCodeNameCollision   = "E107" // Tick block and instance share a name

	// Library lookup errors
	ErrCodeUnknownModule  = "E110" // Module not in library
	ErrCodeExternalModule = "E111" // External module has no document body
	ErrCodeOrderLoop      = "E112" // Update order has loops

	// Document decode errors
	ErrCodeDecodeParse    = "E120" // Document text is malformed
	ErrCodeDecodeMissing  = "E121" // Required document field missing
	ErrCodeDecodeMismatch = "E122" // Document field has the wrong kind
)

// compileErrorCode classifies a CompileError by its message.
func compileErrorCode(err *compiler.CompileError) string {
	msg := err.Message
	switch {
	case err.Field == "cue":
		return ErrCodeBuildFailed
	case strings.Contains(msg, "already used by"):
		return ErrCodeNameCollision
	case strings.Contains(msg, "not a valid"):
		return ErrCodeInvalidName
	case strings.Contains(msg, "float"), strings.Contains(msg, "unsupported value kind"):
		return ErrCodeInvalidExpr
	case strings.Contains(msg, "is required"):
		return ErrCodeMissingField
	case strings.HasPrefix(msg, "must be a list"), msg == "must be a string", msg == "must be a bool":
		return ErrCodeInvalidType
	case strings.HasPrefix(msg, "external modules"):
		return ErrCodeExternalBody
	case strings.Contains(msg, "pair"), strings.Contains(msg, "instance.port"), strings.Contains(msg, "alias"):
		return ErrCodeInvalidTopology
	default:
		return ErrCodeGeneric
	}
}

// decodeErrorCode maps a codec decode error to an error code.
func decodeErrorCode(err error) string {
	switch {
	case errors.Is(err, codec.ErrMissingField):
		return ErrCodeDecodeMissing
	case errors.Is(err, codec.ErrTypeMismatch):
		return ErrCodeDecodeMismatch
	case errors.Is(err, codec.ErrParse):
		return ErrCodeDecodeParse
	default:
		return ErrCodeGeneric
	}
}
