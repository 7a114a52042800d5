package api

// NamespaceRef is a filesystem symlink pointing at a /proc/<pid>/ns
// directory, letting sibling processes join the namespaces the pointed-at
// process holds. It's a weak reference: its existence does not keep the
// namespaces alive, only the member processes do.
type NamespaceRef struct {
	// LinkPath is the symlink itself, e.g. "/run/myns".
	LinkPath string
	// TargetDir is the /proc/<pid>/ns directory it points at.
	TargetDir string
}
