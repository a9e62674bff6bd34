//go:build !unix

package process

import "os/exec"

// configureProcessGroup keeps the exec default of killing only the child.
func configureProcessGroup(cmd *exec.Cmd) {}
