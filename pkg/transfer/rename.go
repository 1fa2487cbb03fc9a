package transfer

import "maps"

// RenameTable maps legacy attribute names to the attribute that must be
// used in their place. Reads and writes both go through the replacement.
type RenameTable map[string]string

// DefaultRenames redirects renderer and filter accessors that would
// instantiate per-object copies to their shared counterparts.
var DefaultRenames = RenameTable{
	"material":  "sharedMaterial",
	"materials": "sharedMaterials",
	"mesh":      "sharedMesh",
}

// Resolve returns the replacement for name, if any.
func (r RenameTable) Resolve(name string) (string, bool) {
	to, ok := r[name]
	return to, ok
}

// With returns a copy of r extended with extra. Entries in extra win.
func (r RenameTable) With(extra RenameTable) RenameTable {
	out := make(RenameTable, len(r)+len(extra))
	maps.Copy(out, r)
	maps.Copy(out, extra)
	return out
}
