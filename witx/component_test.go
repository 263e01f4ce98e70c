package witx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/witx-bindgen/witx"
)

func TestComponentInterfacesAll(t *testing.T) {
	c := witx.NewComponentInterfaces()
	require.Zero(t, c.Len())
	require.Empty(t, c.All())

	c.Default = witx.NewInterface("default")
	c.Imports["wasi:io"] = witx.NewInterface("io")
	c.Imports["env"] = witx.NewInterface("env")
	c.Exports["calculator"] = witx.NewInterface("calculator")

	assert.Equal(t, []string{"env", "wasi:io"}, c.ImportNames())
	assert.Equal(t, []string{"calculator"}, c.ExportNames())

	var roles []string
	var names []string
	for _, e := range c.All() {
		roles = append(roles, e.Role.String())
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"default", "import", "import", "export"}, roles)
	assert.Equal(t, []string{witx.DefaultInterfaceName, "env", "wasi:io", "calculator"}, names)
	assert.Equal(t, 4, c.Len())
}

func TestComponentInterfacesFragment(t *testing.T) {
	c := witx.NewComponentInterfaces()
	c.Imports["b"] = witx.NewInterface("b")
	c.Imports["a"] = witx.NewInterface("a")
	c.Exports["calc"] = witx.NewInterface("calc")

	f := c.Fragment()
	assert.Nil(t, f.Default)
	require.Len(t, f.Imports, 2)
	assert.Equal(t, "a", f.Imports[0].Name)
	assert.Equal(t, "b", f.Imports[1].Name)
	assert.Same(t, c.Imports["a"], f.Imports[0].Interface, "fragment shares interfaces with the aggregate")
	require.Len(t, f.Exports, 1)
	assert.Equal(t, "calc", f.Exports[0].Name)

	assert.True(t, witx.NewComponentInterfaces().Fragment().Empty())
}
