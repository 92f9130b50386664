package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/quill/internal/ir"
)

// ErrUnsupportedFormat is returned for grammar files that are neither CUE nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported grammar format (want .cue, .yaml or .yml)")

// LoadFile reads a grammar from path. A .cue file is compiled on its own, a
// directory is loaded as one CUE package, and .yaml or .yml files go through
// ParseYAML. A grammar without a name takes the file's base name.
func LoadFile(path string) (*ir.Grammar, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var g *ir.Grammar
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case info.IsDir():
		g, err = loadCUEDir(path)
	case ext == ".cue":
		g, err = loadCUEFile(path)
	case ext == ".yaml" || ext == ".yml":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			g, err = ParseYAML(path, data)
		}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	if g.Name == "" {
		base := filepath.Base(path)
		g.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return g, nil
}

func loadCUEFile(path string) (*ir.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	return CompileGrammar(v)
}

func loadCUEDir(dir string) (*ir.Grammar, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("%s: no CUE instances loaded", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	return CompileGrammar(cuecontext.New().BuildInstance(inst))
}
