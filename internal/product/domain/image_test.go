package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionImages(t *testing.T) {
	current := ImageList{
		{URL: "https://cdn.example.com/a.jpg", PublicID: "shop/a"},
		{URL: "https://cdn.example.com/b.jpg", PublicID: "shop/b"},
		{URL: "https://cdn.example.com/c.jpg", PublicID: "shop/c"},
	}

	t.Run("splits by retained set", func(t *testing.T) {
		retained, removed := PartitionImages(current, []PublicID{"shop/a", "shop/c"})

		require.Len(t, retained, 2)
		require.Len(t, removed, 1)
		assert.Equal(t, PublicID("shop/a"), retained[0].PublicID)
		assert.Equal(t, PublicID("shop/c"), retained[1].PublicID)
		assert.Equal(t, PublicID("shop/b"), removed[0].PublicID)
	})

	t.Run("partition is exact and disjoint", func(t *testing.T) {
		retained, removed := PartitionImages(current, []PublicID{"shop/b"})

		assert.Equal(t, len(current), len(retained)+len(removed))
		seen := map[PublicID]int{}
		for _, img := range retained {
			seen[img.PublicID]++
		}
		for _, img := range removed {
			seen[img.PublicID]++
		}
		for _, img := range current {
			assert.Equal(t, 1, seen[img.PublicID])
		}
	})

	t.Run("empty retain set removes everything", func(t *testing.T) {
		retained, removed := PartitionImages(current, nil)

		assert.Empty(t, retained)
		assert.Len(t, removed, len(current))
	})

	t.Run("unknown retained ids are ignored", func(t *testing.T) {
		retained, removed := PartitionImages(current, []PublicID{"shop/a", "shop/ghost"})

		require.Len(t, retained, 1)
		assert.Equal(t, PublicID("shop/a"), retained[0].PublicID)
		assert.Len(t, removed, 2)
	})

	t.Run("retained preserves original order", func(t *testing.T) {
		retained, _ := PartitionImages(current, []PublicID{"shop/c", "shop/a"})

		require.Len(t, retained, 2)
		assert.Equal(t, PublicID("shop/a"), retained[0].PublicID)
		assert.Equal(t, PublicID("shop/c"), retained[1].PublicID)
	})

	t.Run("empty current yields empty parts", func(t *testing.T) {
		retained, removed := PartitionImages(ImageList{}, []PublicID{"shop/a"})

		assert.Empty(t, retained)
		assert.Empty(t, removed)
	})
}

func TestImageListPublicIDs(t *testing.T) {
	list := ImageList{
		{URL: "u1", PublicID: "p1"},
		{URL: "u2", PublicID: "p2"},
	}
	assert.Equal(t, []PublicID{"p1", "p2"}, list.PublicIDs())
	assert.Empty(t, ImageList{}.PublicIDs())
}

func TestImageListScanValue(t *testing.T) {
	list := ImageList{{URL: "https://cdn.example.com/a.jpg", PublicID: "shop/a"}}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded ImageList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)

	var fromNil ImageList
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)
}
