//go:build linux
// +build linux

package linux

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigArgsEmpty(t *testing.T) {
	ast := assert.New(t)
	cfg := LVMConfig{}

	args := cfg.ConfigArgs(false)
	ast.Equal(2, len(args))
	ast.Equal("--config", args[0])
	ast.Contains(args[1], "preferred_names=")
	ast.NotContains(args[1], "filter=")
	ast.NotContains(args[1], "locking_type")
}

func TestConfigArgsReadOnlyLocking(t *testing.T) {
	ast := assert.New(t)
	cfg := LVMConfig{}

	args := cfg.ConfigArgs(true)
	ast.Contains(args[1], "global {locking_type=4}")
}

func TestConfigArgsFilter(t *testing.T) {
	ast := assert.New(t)
	cfg := LVMConfig{}

	cfg.AddFilterReject("dev/sda")
	cfg.AddFilterReject("dev/vdb1")

	args := cfg.ConfigArgs(true)
	ast.Contains(args[1], `"r|/dev/sda$|"`)
	ast.Contains(args[1], `"r|/dev/vdb1$|"`)
	ast.Equal(1, strings.Count(args[1], "filter=["))
}

func TestConfigRemoveFilterReject(t *testing.T) {
	ast := assert.New(t)
	cfg := LVMConfig{}

	cfg.AddFilterReject("dev/sda")
	cfg.AddFilterReject("dev/sdb")
	cfg.RemoveFilterReject("dev/sda")
	// removing again is a no-op
	cfg.RemoveFilterReject("dev/sda")

	ast.Equal([]string{"dev/sdb"}, cfg.FilterRejects())
}

func TestConfigReset(t *testing.T) {
	ast := assert.New(t)
	cfg := LVMConfig{}

	cfg.AddFilterReject("dev/sda")
	cfg.Reset()

	ast.Empty(cfg.FilterRejects())
	ast.NotContains(cfg.ConfigArgs(false)[1], "filter=")
}
