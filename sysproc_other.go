//go:build !unix

package spawn

import (
	"syscall"

	"github.com/jmgilman/go/errors"
)

// sysProcAttr rejects credentials, which only unix platforms support.
// Detached is accepted and has no effect.
func sysProcAttr(opts Options) (*syscall.SysProcAttr, error) {
	if opts.UID != nil || opts.GID != nil {
		return nil, errors.New(errors.CodeNotImplemented, "uid and gid are only supported on unix")
	}
	return nil, nil
}
