package flowchart

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequenceIDs(ids ...string) IDGenerator {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestNameRegistryFormat(t *testing.T) {
	r := NewNameRegistry(nil)
	name, err := r.Next("approve", nil)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^approve_clone_[0-9a-f]{12}$`), name)
	assert.True(t, r.Issued(name))
}

func TestNameRegistryNeverReissues(t *testing.T) {
	r := NewNameRegistry(sequenceIDs("aaa", "aaa", "bbb"))

	first, err := r.Next("step", nil)
	require.NoError(t, err)
	second, err := r.Next("step", nil)
	require.NoError(t, err)

	assert.Equal(t, "step_clone_aaa", first)
	assert.Equal(t, "step_clone_bbb", second)
}

func TestNameRegistrySkipsTakenNames(t *testing.T) {
	r := NewNameRegistry(sequenceIDs("one", "two"))
	taken := func(name string) bool { return name == "step_clone_one" }

	name, err := r.Next("step", taken)
	require.NoError(t, err)
	assert.Equal(t, "step_clone_two", name)
	assert.False(t, r.Issued("step_clone_one"))
}

func TestNameRegistryGivesUpOnStuckGenerator(t *testing.T) {
	r := NewNameRegistry(sequenceIDs("same"))
	_, err := r.Next("step", nil)
	require.NoError(t, err)

	_, err = r.Next("step", nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRandomIDIsShortHex(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := RandomID()
		assert.Len(t, id, 12)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
