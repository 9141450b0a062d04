package compiler

import (
	"errors"
	"fmt"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/crease/internal/ir"
)

// Sentinel errors for the stages of LoadFile before compilation.
var (
	ErrLoadFailed  = errors.New("cue load failed")
	ErrBuildFailed = errors.New("cue build failed")
)

// LoadFile reads one CUE file and compiles its top-level `match` field.
// Load and build failures wrap ErrLoadFailed and ErrBuildFailed; schema
// and field errors are returned as *CompileError.
func LoadFile(path string) (*ir.MatchConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, path, err)
	}

	cfg := &load.Config{Dir: filepath.Dir(abs)}
	instances := load.Instances([]string{filepath.Base(abs)}, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: %s: no instances", ErrLoadFailed, path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, path, inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBuildFailed, path, err)
	}
	return CompileMatch(v.LookupPath(cue.ParsePath("match")))
}
