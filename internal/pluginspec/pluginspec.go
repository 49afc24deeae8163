// Package pluginspec parses the `--plugin` activation grammar spec.md §3
// and §6 define: `name(:k=v)*(,name(:k=v)*)*`.
package pluginspec

import (
	"strings"

	"github.com/rootcut/rootcut/internal/domain"
	"github.com/rootcut/rootcut/internal/engctx"
)

// AlwaysActive are the analyzers active regardless of --plugin activation
// (spec.md §6: "link,which,folder,ldd,scripts are always active").
var AlwaysActive = []string{"link", "which", "folder", "ldd", "scripts"}

// KnownPlugins is the full recognized plugin set, used by --plugin-all.
var KnownPlugins = []string{"link", "which", "folder", "ldd", "scripts", "strace"}

// Parse parses one or more comma-separated `--plugin` activation strings
// into a PluginParams mapping. Each entry has the form `name` or
// `name:k1=v1:k2=v2`. A malformed entry (a `:`-segment without `=`) yields
// ErrMalformedPlugin.
func Parse(specs []string) (engctx.PluginParams, error) {
	params := make(engctx.PluginParams)
	for _, name := range AlwaysActive {
		params[name] = map[string]string{}
	}

	for _, spec := range specs {
		for _, entry := range strings.Split(spec, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if err := parseEntry(entry, params); err != nil {
				return nil, err
			}
		}
	}
	return params, nil
}

// ParseAll returns a PluginParams activating every known plugin with
// default (empty) parameters, for --plugin-all.
func ParseAll() engctx.PluginParams {
	params := make(engctx.PluginParams)
	for _, name := range KnownPlugins {
		params[name] = map[string]string{}
	}
	return params
}

func parseEntry(entry string, params engctx.PluginParams) error {
	segments := strings.Split(entry, ":")
	name := segments[0]
	if name == "" {
		return domain.ErrMalformedPlugin{Spec: entry, Reason: "empty plugin name"}
	}

	paramMap, ok := params[name]
	if !ok {
		paramMap = map[string]string{}
	}

	for _, seg := range segments[1:] {
		kv := strings.SplitN(seg, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return domain.ErrMalformedPlugin{Spec: entry, Reason: "expected key=value after plugin name"}
		}
		paramMap[kv[0]] = kv[1]
	}

	params[name] = paramMap
	return nil
}
