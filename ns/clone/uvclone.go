package clone

import (
	"os"

	"golang.org/x/sys/unix"

	"go.sodimm.me/kons/lib/ksync"
	"go.sodimm.me/kons/ns/idmap"
	"go.sodimm.me/kons/nserr"
)

const cloneNewUser = unix.CLONE_NEWUSER

// UVCloneSingle re-execs a child into a fresh user namespace mapping uid/gid
// as its single occupant, running entrypoint with payload once the id-map
// handshake completes. The protocol: child re-execs, child's entrypoint
// calls Yield() on its rendezvous endpoint (parking it), parent writes
// uid_map/setgroups/gid_map, parent posts, child proceeds.
//
// The returned error is non-nil only if the id-map writes failed; in that
// case the child is still alive in a broken state and the caller must
// Wait or Kill it.
func UVCloneSingle(uid, gid int, entrypoint string, payload []byte, flags uintptr) (*ChildRef, error) {
	a, b, err := ksync.NewSharedPair()
	if err != nil {
		return nil, nserr.ResourceErr(err)
	}

	payloadFile, err := os.CreateTemp("", "kons-payload-")
	if err != nil {
		a.Close()
		b.Close()
		return nil, nserr.ResourceErr(err)
	}
	if _, err := payloadFile.Write(payload); err != nil {
		payloadFile.Close()
		os.Remove(payloadFile.Name())
		a.Close()
		b.Close()
		return nil, nserr.ResourceErr(err)
	}
	payloadPath := payloadFile.Name()
	payloadFile.Close()

	ref, err := Spawn(SpawnOpts{
		Entrypoint:   entrypoint,
		PayloadPath:  payloadPath,
		Cloneflags:   flags | cloneNewUser,
		SyncEndpoint: b,
		Cleanup: func() {
			a.Close()
			os.Remove(payloadPath)
		},
	})
	// Whether or not Spawn succeeded, the parent's copy of b's descriptors
	// (duplicated into the child's fd table by cmd.Start) is no longer
	// needed on this side.
	b.Close()
	if err != nil {
		a.Close()
		os.Remove(payloadPath)
		return nil, err
	}

	if err := a.Wait(); err != nil {
		ref.Kill()
		ref.Wait()
		return nil, nserr.ProtocolErr("uvclone-single: child did not yield: %v", err)
	}

	idErr := idmap.WriteIdentity(ref.Pid(), idmap.Single(uid, os.Getuid()), idmap.Single(gid, os.Getgid()))
	if idErr != nil {
		// Per protocol, the child stays parked; the caller decides whether
		// to wait or kill it now that setup is known broken.
		return ref, idErr
	}

	if err := a.Post(); err != nil {
		return ref, nserr.ProtocolErr("uvclone-single: failed to release child: %v", err)
	}
	return ref, nil
}
