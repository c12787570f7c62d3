package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_AppliesDefaults(t *testing.T) {
	r := New(nil)
	require.True(t, r.Enabled(FlagSweepOnReload))
	require.True(t, r.Enabled(FlagResolverDedupe))
	require.True(t, r.Enabled(FlagStatusColor))
	require.Equal(t, Defaults(), r.All())
}

func TestNew_ConfigOverridesDefaults(t *testing.T) {
	r := New(map[string]bool{
		FlagSweepOnReload: false,
		"experimental":    true,
	})
	require.False(t, r.Enabled(FlagSweepOnReload))
	require.True(t, r.Enabled(FlagResolverDedupe))
	require.True(t, r.Enabled("experimental"))
	require.Equal(t, []string{"experimental", FlagResolverDedupe, FlagStatusColor}, r.EnabledNames())
}

func TestEnabled_UnknownFlagIsFalse(t *testing.T) {
	require.False(t, New(nil).Enabled("does-not-exist"))
}

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	require.False(t, r.Enabled(FlagSweepOnReload))
	require.Empty(t, r.All())
	require.Nil(t, r.EnabledNames())
}

func TestAll_ReturnsCopy(t *testing.T) {
	r := New(nil)
	all := r.All()
	all[FlagSweepOnReload] = false
	require.True(t, r.Enabled(FlagSweepOnReload))
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	in := map[string]bool{FlagStatusColor: false}
	r := New(in)
	in[FlagStatusColor] = true
	require.False(t, r.Enabled(FlagStatusColor))
}
