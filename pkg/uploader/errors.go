package uploader

import "github.com/snapdrop/cli/internal/api"

// IsTransportError reports whether err is a transport-level failure
// rather than a server-side answer. A server that responded, even with
// an error status, is not a transport failure.
func IsTransportError(err error) bool {
	return err != nil && !api.IsKind(err, api.KindServer)
}
