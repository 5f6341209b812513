//go:build windows

package hook

import "os/exec"

// isolate keeps the default cancellation, which kills only the hook process. WaitDelay
// still bounds how long its children can hold the output pipes.
func isolate(cmd *exec.Cmd) {}
