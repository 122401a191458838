package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemapping(t *testing.T) {
	r, err := ParseRemapping("@openzeppelin/=lib/openzeppelin-contracts/")
	require.NoError(t, err)
	assert.Equal(t, Remapping{Prefix: "@openzeppelin/", Target: "lib/openzeppelin-contracts/"}, r)

	r, err = ParseRemapping("src/test:forge-std/=lib/forge-std/src/")
	require.NoError(t, err)
	assert.Equal(t, "src/test", r.Context)
	assert.Equal(t, "src/test:forge-std/=lib/forge-std/src/", r.String())
	assert.False(t, r.Matches("forge-std/Test.sol"), "context rules are left to the compiler")

	_, err = ParseRemapping("no-equals-sign")
	assert.Error(t, err)

	_, err = ParseRemapping("=target")
	assert.Error(t, err)
}

func TestParseRemappings_SkipsCommentsAndMalformedLines(t *testing.T) {
	remappings := ParseRemappings([]byte("# deps\n\na/=b/\nbroken\nc=d\n"))

	assert.Equal(t, []Remapping{
		{Prefix: "a/", Target: "b/"},
		{Prefix: "c", Target: "d"},
	}, remappings)
}

func TestRemappingApply(t *testing.T) {
	r := Remapping{Prefix: "@oz", Target: "/abs/oz"}

	assert.True(t, r.Matches("@oz/token/ERC20.sol"))
	assert.Equal(t, "/abs/oz/token/ERC20.sol", r.Apply("@oz/token/ERC20.sol"))
}

func TestPackageNameOf(t *testing.T) {
	assert.Equal(t, "forge-std", packageNameOf("forge-std/Test.sol"))
	assert.Equal(t, "@openzeppelin/contracts", packageNameOf("@openzeppelin/contracts/token/ERC20.sol"))
	assert.Equal(t, "lonely", packageNameOf("lonely"))
}
