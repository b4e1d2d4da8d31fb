package simplesocial_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

func TestValidateBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pic.jpg", strings.Repeat("x", 2048))
	pic := filepath.Join(dir, "pic.jpg")

	t.Run("valid bundle passes", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "pic", MainText: "hello", Images: []string{pic}}
		assert.NoError(t, simplesocial.ValidateBundle(bundle, simplesocial.Limits{TextLimit: 280, MaxImages: 4}))
	})

	t.Run("empty bundle fails", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "empty"}
		assert.ErrorIs(t, simplesocial.ValidateBundle(bundle, simplesocial.Limits{}), simplesocial.ErrEmptyBundle)
	})

	t.Run("mixed media fails", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "mix", Images: []string{pic}, Video: pic}
		assert.ErrorIs(t, simplesocial.ValidateBundle(bundle, simplesocial.Limits{}), simplesocial.ErrMixedMedia)
	})

	t.Run("text limit enforced", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "long", MainText: strings.Repeat("a", 281)}
		err := simplesocial.ValidateBundle(bundle, simplesocial.Limits{TextLimit: 280})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "main text exceeds 280")
	})

	t.Run("zero text limit means unlimited", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "long", MainText: strings.Repeat("a", 10000)}
		assert.NoError(t, simplesocial.ValidateBundle(bundle, simplesocial.Limits{}))
	})

	t.Run("alt text default limit is 1000", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{
			Basename: "alt",
			MainText: "ok",
			AltText:  strings.Repeat("a", 1001),
		}
		err := simplesocial.ValidateBundle(bundle, simplesocial.Limits{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "alt text exceeds 1000")
	})

	t.Run("max images enforced", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "many", Images: []string{pic, pic, pic}}
		err := simplesocial.ValidateBundle(bundle, simplesocial.Limits{MaxImages: 2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too many images")
	})

	t.Run("image size cap enforced", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "big", Images: []string{pic}}
		err := simplesocial.ValidateBundle(bundle, simplesocial.Limits{MaxImageSizeMB: 0.001})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})

	t.Run("missing media file fails", func(t *testing.T) {
		bundle := &simplesocial.PostBundle{Basename: "gone", Images: []string{filepath.Join(dir, "gone.jpg")}}
		assert.Error(t, simplesocial.ValidateBundle(bundle, simplesocial.Limits{}))
	})
}
