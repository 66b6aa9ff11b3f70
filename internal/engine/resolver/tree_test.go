package resolver_test

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/resolver"
)

func TestTree_SingleChild(t *testing.T) {
	c := newFakeCatalog()
	root := c.add(t, "top:0.1.0", "sub", "0.1.0")
	c.add(t, "sub:0.1.0")

	lock, err := newResolver(c).Resolve(context.Background(), root, resolver.Options{})
	require.NoError(t, err)

	out, err := resolver.Tree(lock, "top", resolver.UnicodeGlyphs)
	require.NoError(t, err)
	assert.Equal(t, "top:0.1.0\n└─ sub:0.1.0\n", out)
}

func TestTree_SharedDependencyListedOnce(t *testing.T) {
	c := newFakeCatalog()
	root := c.add(t, "top:0.1.0",
		"bot1", "0.1", "mid", "0.1", "bot2", "0.1", "sub", "0.1.0")
	c.add(t, "bot1:0.1.0", "sub", "0.1.0")
	c.add(t, "mid:0.1.0", "bot2", "0.1")
	c.add(t, "bot2:0.1.0", "sub", "0.1.0")
	c.add(t, "sub:0.1.0")

	lock, err := newResolver(c).Resolve(context.Background(), root, resolver.Options{})
	require.NoError(t, err)

	out, err := resolver.Tree(lock, "top", resolver.UnicodeGlyphs)
	require.NoError(t, err)
	assert.Equal(t, "top:0.1.0\n"+
		"├─ bot1:0.1.0\n"+
		"├─ bot2:0.1.0\n"+
		"├─ mid:0.1.0\n"+
		"└─ sub:0.1.0\n", out)
	for _, name := range []string{"bot1", "bot2", "mid", "sub"} {
		assert.Equal(t, 1, strings.Count(out, name+":"), name)
	}
}

func TestTree_TransitiveOnlyDependencyNestsOnce(t *testing.T) {
	c := newFakeCatalog()
	root := c.add(t, "top:0.1.0", "a", "1", "b", "1")
	c.add(t, "a:1.0.0", "sub", "0.1")
	c.add(t, "b:1.0.0", "sub", "0.1")
	c.add(t, "sub:0.1.0")

	lock, err := newResolver(c).Resolve(context.Background(), root, resolver.Options{})
	require.NoError(t, err)

	out, err := resolver.Tree(lock, "top", resolver.ASCIIGlyphs)
	require.NoError(t, err)
	assert.Equal(t, "top:0.1.0\n+- a:1.0.0\n|  \\- sub:0.1.0\n\\- b:1.0.0\n", out)
}

func TestTree_Golden(t *testing.T) {
	c := newFakeCatalog()
	root := c.add(t, "top:0.1.0", "mid", "0.1", "alu", "1", "sub", "0.1.0")
	c.add(t, "alu:1.2.0", "sub", "0.1")
	c.add(t, "mid:0.1.0", "fifo", "2.0", "sub", "0.1")
	c.add(t, "fifo:2.0.1")
	c.add(t, "sub:0.1.0")

	lock, err := newResolver(c).Resolve(context.Background(), root, resolver.Options{})
	require.NoError(t, err)

	g := goldie.New(t)
	for name, glyphs := range map[string]resolver.Glyphs{
		"tree_unicode": resolver.UnicodeGlyphs,
		"tree_ascii":   resolver.ASCIIGlyphs,
	} {
		out, err := resolver.Tree(lock, "top", glyphs)
		require.NoError(t, err)
		g.Assert(t, name, []byte(out))
	}
}

func TestTree_RootNotLocked(t *testing.T) {
	lock := domain.NewLock(nil)
	_, err := resolver.Tree(lock, "top", resolver.UnicodeGlyphs)
	assert.ErrorIs(t, err, domain.ErrInvalidLock)
}
