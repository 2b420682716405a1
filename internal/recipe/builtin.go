package recipe

import (
	"maps"
	"slices"
)

// builtins are the recipes available by name without configuration.
var builtins = map[string]string{
	"http-status": "lit:HTTP/ version=word code=u16 reason=rest",
	"http-header": "name=until:: char:: value=rest",
	"key-value":   "key=until:= char:= value=rest",
}

// Builtin returns the source of the named built-in recipe.
func Builtin(name string) (string, bool) {
	src, ok := builtins[name]
	return src, ok
}

// Builtins returns a copy of all built-in recipes keyed by name.
func Builtins() map[string]string {
	return maps.Clone(builtins)
}

// Lookup resolves name against extra first and the built-in recipes second.
func Lookup(name string, extra map[string]string) (string, bool) {
	if src, ok := extra[name]; ok {
		return src, true
	}
	return Builtin(name)
}

// Names returns the sorted names of the built-in recipes and extra.
func Names(extra map[string]string) []string {
	all := maps.Clone(builtins)
	maps.Copy(all, extra)
	return slices.Sorted(maps.Keys(all))
}
