package def

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load reads a machine definition from a CUE file or a directory of CUE
// files and compiles it. The definition must live under a top-level
// "machine" field.
//
// Load performs shape compilation only; callers that want the full
// cross-reference check run Validate on the result.
func Load(path string) (*Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("definition path: %w", err)
	}

	cfg := &load.Config{}
	var args []string
	if info.IsDir() {
		cfg.Dir = path
		args = []string{"."}
	} else {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	machine := value.LookupPath(cue.ParsePath("machine"))
	if !machine.Exists() {
		return nil, &CompileError{Field: "machine", Message: "no top-level machine field", Pos: value.Pos()}
	}

	return CompileMachine(machine)
}
