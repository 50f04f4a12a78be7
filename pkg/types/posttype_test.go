package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostTypeSupports(t *testing.T) {
	pt := &PostType{Slug: "event", Supports: []string{FeatureTitle, FeatureEditor}}

	assert.Equal(t, "event", pt.ID())
	assert.True(t, pt.SupportsAll(FeatureTitle))
	assert.True(t, pt.SupportsAll(FeatureTitle, FeatureEditor))
	assert.False(t, pt.SupportsAll(FeatureTitle, FeatureThumbnail), "every feature must be supported")
	assert.True(t, pt.SupportsAll(), "no features is vacuously supported")

	pt.AddSupport(FeatureThumbnail, FeatureTitle, "")
	assert.Equal(t, []string{FeatureTitle, FeatureEditor, FeatureThumbnail}, pt.Supports)

	pt.RemoveSupport(FeatureEditor, FeatureComments)
	assert.Equal(t, []string{FeatureTitle, FeatureThumbnail}, pt.Supports)
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"event", true},
		{"model_test_post_type", true},
		{"sci-fi", true},
		{"", false},
		{"Event", false},
		{"has space", false},
		{"a_slug_that_is_far_too_long", false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidSlug(tt.slug))
		})
	}
}
