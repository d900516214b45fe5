package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfhdr/elf"
)

type ConfigSuite struct{}

func TestConfig(t *testing.T) {
	suite.RunTests(t, &ConfigSuite{})
}

func (ConfigSuite) TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	expect.Nil(t, err)

	expect.Equal(t, elf.LenientClass, cfg.Policy())
	expect.True(t, cfg.ColorEnabled())
	expect.Equal(t, runtime.GOMAXPROCS(0), cfg.NumWorkers())

	parser := cfg.NewParser()
	expect.Equal(t, elf.LenientClass, parser.ClassPolicy)
	expect.Equal(t, 0, len(parser.Names))
}

func (ConfigSuite) TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elfhdr.yaml")
	err := os.WriteFile(
		path,
		[]byte(`
class_policy: strict
color: false
workers: 3
resource_names:
  0x7f010000: app_name
  2131755008: title
`),
		0644)
	expect.Nil(t, err)

	cfg, err := Load(path)
	expect.Nil(t, err)

	expect.Equal(t, elf.StrictClass, cfg.Policy())
	expect.False(t, cfg.ColorEnabled())
	expect.Equal(t, 3, cfg.NumWorkers())

	parser := cfg.NewParser()
	expect.Equal(t, elf.StrictClass, parser.ClassPolicy)

	name, ok := parser.Names.Lookup(0x7f010000)
	expect.True(t, ok)
	expect.Equal(t, "app_name", name)

	name, ok = parser.Names.Lookup(2131755008)
	expect.True(t, ok)
	expect.Equal(t, "title", name)
}

func (ConfigSuite) TestInvalid(t *testing.T) {
	_, err := Parse([]byte("class_policy: pedantic\n"))
	expect.Error(t, err, "invalid class policy")

	_, err = Parse([]byte("workers: -1\n"))
	expect.Error(t, err, "invalid workers")

	_, err = Parse([]byte("colour: true\n"))
	expect.Error(t, err, "failed to decode yaml")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	expect.Error(t, err, "failed to read config")
}
