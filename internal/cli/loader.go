package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/crease/internal/compiler"
	"github.com/roach88/crease/internal/ir"
)

// LoadError represents an error that occurred while loading a match file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Line returns the source line of the error, or 0.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// LoadMatch compiles and validates a CUE match file.
//
// A file that cannot be read, loaded or compiled yields a nil config and a
// single *LoadError. A file that compiles but breaks a match rule yields
// the config together with every compiler.ValidationError found.
func LoadMatch(path string) (*ir.MatchConfig, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("match file not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing match file: %v", err)}}
	}
	if info.IsDir() || filepath.Ext(path) != ".cue" {
		return nil, []error{&LoadError{Code: ErrCodeNotCUE, Message: fmt.Sprintf("not a CUE file: %s", path)}}
	}

	cfg, err := compiler.LoadFile(path)
	if err != nil {
		return nil, []error{convertLoadError(err)}
	}

	var errs []error
	for _, v := range compiler.Validate(cfg) {
		errs = append(errs, v)
	}
	return cfg, errs
}

// convertLoadError maps a compiler failure to a LoadError with position info.
func convertLoadError(err error) *LoadError {
	var compileErr *compiler.CompileError
	switch {
	case errors.As(err, &compileErr):
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	case errors.Is(err, compiler.ErrLoadFailed):
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	case errors.Is(err, compiler.ErrBuildFailed):
		return &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	default:
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
}

// Error code constants - unified across all CLI commands. Match rule
// violations keep the compiler's E2xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNotCUE      = "E003" // Path is not a .cue file
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // Store write error

	// Compile errors
	ErrCodeMissingMatch = "E101" // No top-level match field
	ErrCodeSchema       = "E102" // Value rejected by the #Match schema
	ErrCodeTeams        = "E103" // Malformed teams or players

	// Store errors
	ErrCodeUnknownMatch = "E301" // No such match in the database
	ErrCodeNoMatch      = "E302" // --match omitted and not inferable
	ErrCodeNothingUndo  = "E303" // Undo at the start of the history
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "match":
		return ErrCodeMissingMatch
	case field == "cue":
		return ErrCodeSchema
	case field == "teams" || strings.HasPrefix(field, "teams."):
		return ErrCodeTeams
	default:
		return ErrCodeGeneric
	}
}

// errorCode returns the code carried by a LoadError or ValidationError.
func errorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	var ve compiler.ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ErrCodeGeneric
}
