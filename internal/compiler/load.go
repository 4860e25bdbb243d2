package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/LucianoXu/diracoq/internal/syntax"
)

// Load compiles the theories at path, which is either a single .cue file
// or a directory holding one CUE package. The result is in dependency
// order.
func Load(path string) ([]*Theory, error) {
	v, err := Build(path)
	if err != nil {
		return nil, err
	}
	theories, err := CompileTheories(v)
	if err != nil {
		return nil, err
	}
	return Order(theories)
}

// Build evaluates the CUE at path, a single .cue file or a directory
// holding one CUE package, without compiling any theory.
func Build(path string) (cue.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("load theories: %w", err)
	}
	if info.IsDir() {
		return buildDir(path)
	}
	return buildFile(path)
}

func buildFile(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("load theories: %w", err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

func buildDir(dir string) (cue.Value, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("load theories: no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("load theories: %w", inst.Err)
	}
	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// Program concatenates the commands of theories, which must already be in
// dependency order.
func Program(theories []*Theory) ([]syntax.AST, error) {
	var cmds []syntax.AST
	for _, th := range theories {
		c, err := th.Commands()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c...)
	}
	return cmds, nil
}
