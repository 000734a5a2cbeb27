//go:build linux
// +build linux

package linux

import (
	"fmt"
	"strings"
)

// LVMConfig composes the --config argument handed to every lvm invocation.
// It replaces what lvm would otherwise pick up from lvm.conf: device name
// preferences and a device filter built from reject patterns.
//
// The zero value is usable. It is owned by whoever builds the
// VolumeManager; there is no process wide registry.
type LVMConfig struct {
	filterRejects []string
}

// AddFilterReject adds a regular expression for device paths lvm should
// refuse to look at.
func (c *LVMConfig) AddFilterReject(regexp string) {
	c.filterRejects = append(c.filterRejects, regexp)
}

// RemoveFilterReject removes a previously added reject expression. Removing
// an expression that was never added is not an error.
func (c *LVMConfig) RemoveFilterReject(regexp string) {
	for i, r := range c.filterRejects {
		if r == regexp {
			c.filterRejects = append(c.filterRejects[:i],
				c.filterRejects[i+1:]...)
			return
		}
	}
}

// Reset drops all filter state.
func (c *LVMConfig) Reset() {
	c.filterRejects = nil
}

// FilterRejects returns a copy of the current reject expressions.
func (c *LVMConfig) FilterRejects() []string {
	return append([]string{}, c.filterRejects...)
}

// ConfigArgs returns the lvm.conf style arguments, preceded by --config,
// to append to an lvm command line. With readOnlyLocking set the command
// will not take the lvm global lock, which lets report commands run while
// another process holds it.
func (c *LVMConfig) ConfigArgs(readOnlyLocking bool) []string {
	devices := `preferred_names=["^/dev/mapper/", "^/dev/md/", "^/dev/sd"]`

	if len(c.filterRejects) != 0 {
		rejects := make([]string, 0, len(c.filterRejects))
		for _, r := range c.filterRejects {
			rejects = append(rejects, fmt.Sprintf(`"r|/%s$|"`, r))
		}

		devices += fmt.Sprintf(" filter=[%s]", strings.Join(rejects, ","))
	}

	config := fmt.Sprintf("devices { %s } ", devices)

	if readOnlyLocking {
		config += "global {locking_type=4} "
	}

	return []string{"--config", config}
}
