//go:build unix

package spawn

import (
	"os"
	"syscall"
)

// sysProcAttr maps the detached flag and credentials onto the child's
// process attributes.
func sysProcAttr(opts Options) (*syscall.SysProcAttr, error) {
	if !opts.detached() && opts.UID == nil && opts.GID == nil {
		return nil, nil
	}

	attr := &syscall.SysProcAttr{Setsid: opts.detached()}
	if opts.UID != nil || opts.GID != nil {
		// Only root may reset supplementary groups.
		cred := &syscall.Credential{
			Uid:         uint32(os.Getuid()),
			Gid:         uint32(os.Getgid()),
			NoSetGroups: os.Getuid() != 0,
		}
		if opts.UID != nil {
			cred.Uid = *opts.UID
		}
		if opts.GID != nil {
			cred.Gid = *opts.GID
		}
		attr.Credential = cred
	}
	return attr, nil
}
