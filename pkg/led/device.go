package led

import (
	"fmt"
	"os/exec"
	"strings"
)

// Device is a binary output: on or off. Set must be safe to call from
// the blink goroutine and the controller concurrently.
type Device interface {
	Set(on bool) error
}

// execCommand is swapped out by tests so device writes never shell out.
var execCommand = exec.Command

// SysfsDevice drives an LED through a sysfs brightness file. The
// brightness files are root-owned, so writes go through `sudo tee`
// instead of opening the file directly.
type SysfsDevice struct {
	Path string
}

func (d SysfsDevice) Set(on bool) error {
	state := "0"
	if on {
		state = "1"
	}
	cmd := execCommand("sudo", "tee", d.Path)
	cmd.Stdin = strings.NewReader(state)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("write %s to %s: %w", state, d.Path, err)
	}
	return nil
}
