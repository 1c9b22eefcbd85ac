package spawn

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	stringSliceType = reflect.TypeOf([]string(nil))
	dispositionType = reflect.TypeOf(Disposition{})
	stdioType       = reflect.TypeOf(Stdio{})
)

// ParseOptions decodes an option map keyed by the names in the Options
// mapstructure tags (cwd, toConsole, toFile, ignoreFail, capture, onStdout,
// onStderr, input, shell, env, argv0, detached, uid, gid, stdio).
//
// Beyond plain values it accepts the loose shapes common in config files: a
// single capture stream instead of a list, an env mapping instead of
// KEY=VALUE pairs, a boolean shell flag, and stdio as a list of three
// disposition names or a single name for all streams. Unknown keys are an
// error.
func ParseOptions(raw map[string]any) (Options, error) {
	in := make(map[string]any, len(raw))
	for k, v := range raw {
		in[k] = v
	}
	if shell, ok := in["shell"].(bool); ok {
		if shell {
			in["shell"] = DefaultShell
		} else {
			delete(in, "shell")
		}
	}

	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       optionsHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, errors.CodeInternal, "failed to create options decoder")
	}
	if err := decoder.Decode(in); err != nil {
		return Options{}, errors.Wrap(err, errors.CodeInvalidInput, "invalid options")
	}

	if _, err := normalizeCapture(opts.Capture); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadDefaults reads a YAML options file from fsys for use with
// WithDefaults.
func LoadDefaults(fsys core.ReadFS, path string) (Options, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Options{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read defaults",
			map[string]interface{}{"path": path})
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Options{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to parse defaults",
			map[string]interface{}{"path": path})
	}

	opts, err := ParseOptions(raw)
	if err != nil {
		return Options{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid defaults",
			map[string]interface{}{"path": path})
	}
	return opts, nil
}

// optionsHook converts the loose option shapes into their Go types.
func optionsHook(_, to reflect.Type, data any) (any, error) {
	switch to {
	case stringSliceType:
		if m, ok := data.(map[string]any); ok {
			return envPairs(m), nil
		}
	case dispositionType:
		if name, ok := data.(string); ok {
			return parseDisposition(name)
		}
	case stdioType:
		switch v := data.(type) {
		case string:
			d, err := parseDisposition(v)
			if err != nil {
				return nil, err
			}
			return *StdioAll(d), nil
		case []any:
			if len(v) != 3 {
				return nil, fmt.Errorf("stdio needs 3 dispositions, got %d", len(v))
			}
			var ds [3]Disposition
			for i, item := range v {
				name, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("stdio[%d]: expected a disposition name, got %T", i, item)
				}
				d, err := parseDisposition(name)
				if err != nil {
					return nil, err
				}
				ds[i] = d
			}
			return Stdio{Stdin: ds[0], Stdout: ds[1], Stderr: ds[2]}, nil
		}
	}
	return data, nil
}

// envPairs flattens an env mapping into sorted KEY=VALUE pairs.
func envPairs(m map[string]any) []string {
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(pairs)
	return pairs
}
