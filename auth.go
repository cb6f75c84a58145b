package ninepd

import "errors"

var errAuthFailure = errors.New("ninepd: authentication failed")

// AuthFunc decodes an opaque credential blob accumulated on an auth
// fid (via one or more WRITEs) and reports the uid it asserts. A nil
// error admits the ATTACH that references the auth-fid, provided the
// afid's claimed uid, the decoded uid, and the ATTACH's uid all agree
// — doAttach enforces that invariant, not the verifier itself.
type AuthFunc func(blob []byte) (uid uint32, err error)

// NoAuth admits every attach without requiring an auth handshake at
// all; TAUTH always fails with EINVAL when a server has no auth
// method configured.
var NoAuth AuthFunc

// All combines auth funcs so that every one of them must accept the
// blob and agree on the same uid for the attach to be admitted.
func All(funcs ...AuthFunc) AuthFunc {
	return func(blob []byte) (uint32, error) {
		var uid uint32
		for i, f := range funcs {
			u, err := f(blob)
			if err != nil {
				return 0, err
			}
			if i == 0 {
				uid = u
			} else if u != uid {
				return 0, errAuthFailure
			}
		}
		return uid, nil
	}
}

// Any combines auth funcs so that the attach is admitted with the uid
// reported by the first verifier that accepts the blob.
func Any(funcs ...AuthFunc) AuthFunc {
	return func(blob []byte) (uint32, error) {
		for _, f := range funcs {
			if uid, err := f(blob); err == nil {
				return uid, nil
			}
		}
		return 0, errAuthFailure
	}
}
