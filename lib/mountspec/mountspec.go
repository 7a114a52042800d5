/*
	mountspec parses the mount-spec and overlay-spec grammars the CLI
	front ends take on the command line into api.Step values, so the
	rest of a tool only ever deals with the Recipe type the executor
	understands. Shared between cmd/overlayns and cmd/steamns, since both
	accept the same --mount grammar on top of their own defaults.
*/
package mountspec

import (
	"strings"

	"go.sodimm.me/kons/api"
	"go.sodimm.me/kons/ns/mount"
	"go.sodimm.me/kons/nserr"
)

// splitEscaped splits s on sep, treating a backslash immediately before
// sep as an escape (the separator is kept literal, the backslash dropped).
func splitEscaped(s string, sep byte) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == sep {
			cur.WriteByte(sep)
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}

// ParseMount parses the grammar:
//
//	mount-spec ::= fstype "," device "," mountpoint ("," option)*
//	option     ::= flagname | "mkdir=" ("never"|"maybe"|"require") | <passthrough>
//
// with the shorthands `bind,A,B` ≡ `,A,B,bind` and `rbind,A,B` ≡
// `,A,B,bind,rec`.
func ParseMount(spec string) (api.Step, error) {
	tokens := splitEscaped(spec, ',')

	var fstype, source, target string
	var opts []string
	var extraFlags []string

	switch {
	case len(tokens) > 0 && tokens[0] == "bind":
		extraFlags = append(extraFlags, "bind")
		tokens = tokens[1:]
	case len(tokens) > 0 && tokens[0] == "rbind":
		extraFlags = append(extraFlags, "bind", "rec")
		tokens = tokens[1:]
	default:
		if len(tokens) > 0 {
			fstype = tokens[0]
			tokens = tokens[1:]
		}
	}

	if len(tokens) < 2 {
		return api.Step{}, nserr.ParseErr("Incomplete mount spec: %q", spec)
	}
	source, target = tokens[0], tokens[1]
	opts = append(append([]string{}, extraFlags...), tokens[2:]...)

	var flags uintptr
	var data []string
	policy := api.MkdirNever
	for _, opt := range opts {
		if opt == "" {
			continue
		}
		if strings.HasPrefix(opt, "mkdir=") {
			switch strings.TrimPrefix(opt, "mkdir=") {
			case "never":
				policy = api.MkdirNever
			case "maybe":
				policy = api.MkdirMaybeThis
			case "require":
				policy = api.MkdirRequireThis
			default:
				return api.Step{}, nserr.ParseErr("unknown mkdir= value in mount spec: %q", opt)
			}
			continue
		}
		if bit, ok := mount.FlagNames[opt]; ok {
			flags |= bit
			continue
		}
		data = append(data, opt)
	}

	return api.Step{Mount: &api.MountStep{
		Fstype:      fstype,
		Source:      source,
		Target:      target,
		Flags:       flags,
		Data:        strings.Join(data, ","),
		MkdirPolicy: policy,
	}}, nil
}

// ParseOverlay parses the grammar:
//
//	overlay-spec ::= mountpoint ("," option)*
//	option       ::= "lowerdir=" path | "upperdir=" path | "workdir=" path
//	               | "copyfrom=" path | "tmp" | "shadow" | <mount option>
func ParseOverlay(spec string) (api.Step, error) {
	tokens := splitEscaped(spec, ',')
	if len(tokens) < 1 || tokens[0] == "" {
		return api.Step{}, nserr.ParseErr("Incomplete overlay spec: %q", spec)
	}

	o := &api.OverlayStep{Target: tokens[0]}
	var data []string
	for _, opt := range tokens[1:] {
		switch {
		case opt == "tmp":
			o.Tmp = true
		case opt == "shadow":
			o.Shadow = true
		case strings.HasPrefix(opt, "lowerdir="):
			o.Lowerdir = strings.TrimPrefix(opt, "lowerdir=")
		case strings.HasPrefix(opt, "upperdir="):
			o.Upperdir = strings.TrimPrefix(opt, "upperdir=")
		case strings.HasPrefix(opt, "workdir="):
			o.Workdir = strings.TrimPrefix(opt, "workdir=")
		case strings.HasPrefix(opt, "copyfrom="):
			o.CopyFrom = strings.TrimPrefix(opt, "copyfrom=")
		default:
			data = append(data, opt)
		}
	}
	o.ExtraData = strings.Join(data, ",")

	return api.Step{Overlay: o}, nil
}
