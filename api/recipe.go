/*
	Package api holds the value types the namespace construction engine is
	built around: the declarative Recipe a caller hands the executor, the
	ExecSpec describing the program to ultimately run, and the supporting
	id-map and namespace-reference types.
*/
package api

// MkdirPolicy governs whether a Mount step may create its target
// directory, and whether it's an error for the target to already exist.
type MkdirPolicy string

const (
	MkdirNever       MkdirPolicy = "never"
	MkdirMaybeThis   MkdirPolicy = "maybe_this"
	MkdirMaybeAll    MkdirPolicy = "maybe_all"
	MkdirRequireThis MkdirPolicy = "require_this"
	MkdirRequireAll  MkdirPolicy = "require_all"
)

// Step is one entry in a Recipe. Exactly one of the embedded pointer
// fields is non-nil.
type Step struct {
	Mount     *MountStep
	Overlay   *OverlayStep
	Copy      *CopyStep
	Bind      *BindStep
	PivotRoot *PivotRootStep
	Protect   *ProtectStep
}

type MountStep struct {
	Fstype      string
	Source      string
	Target      string
	Flags       uintptr
	Data        string
	MkdirPolicy MkdirPolicy
}

type OverlayStep struct {
	Target    string
	Lowerdir  string
	Upperdir  string
	Workdir   string
	CopyFrom  string
	Tmp       bool
	Shadow    bool
	ExtraData string // passthrough mount options, comma-joined
}

type CopyStep struct {
	Source    string
	Target    string
	Recursive bool
}

// BindStep is sugar for a MountStep with MS_BIND(|MS_REC)(|MS_RDONLY).
type BindStep struct {
	Source    string
	Target    string
	Recursive bool
	ReadOnly  bool
}

type PivotRootStep struct {
	NewRoot        string
	OldRootRelpath string
	KeepOld        bool
}

type ProtectStep struct {
	Path string
}

// Recipe is an ordered sequence of Steps; order is significant, earlier
// steps are visible to later ones.
type Recipe struct {
	Steps []Step
}

func (r *Recipe) Append(s Step) { r.Steps = append(r.Steps, s) }

// ExecSpec describes the program the constructed namespace ultimately
// runs, and the identity it runs as.
type ExecSpec struct {
	Argv         []string
	Cwd          string
	EnvOverrides map[string]string
	TargetUID    int
	TargetGID    int
	PreserveCwd  bool
}

// MountMode describes the target root layout: whether the recipe runs
// against a pivoted new root or directly against the host's own root
// (the -H host-root passthrough mode from SPEC_FULL.md §11).
type MountMode struct {
	HostRoot bool
	NewRoot  string
}
