package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/study-bot/internal/models"
)

func TestClampLevel(t *testing.T) {
	tests := []struct {
		in   int
		want models.Level
	}{
		{-100, models.LevelBeginner},
		{-1, models.LevelBeginner},
		{0, models.LevelBeginner},
		{1, models.LevelFamiliar},
		{2, models.LevelProficient},
		{3, models.LevelMastered},
		{4, models.LevelMastered},
		{1 << 30, models.LevelMastered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.ClampLevel(tt.in), "ClampLevel(%d)", tt.in)
	}
}

func TestParseLevel(t *testing.T) {
	t.Run("ByName", func(t *testing.T) {
		l, err := models.ParseLevel(" Proficient ")
		require.NoError(t, err)
		assert.Equal(t, models.LevelProficient, l)
	})

	t.Run("ByNumberClamped", func(t *testing.T) {
		l, err := models.ParseLevel("9")
		require.NoError(t, err)
		assert.Equal(t, models.LevelMastered, l)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := models.ParseLevel("expert")
		assert.Error(t, err)
	})
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "beginner", models.LevelBeginner.String())
	assert.Equal(t, "mastered", models.LevelMastered.String())
	assert.Equal(t, "mastered", models.Level(7).String())
}

func TestTagSameAppearance(t *testing.T) {
	a := models.Tag{ID: "1", Name: "grammar", ColorHex: "FF0000"}
	b := models.Tag{ID: "2", Name: "grammar", ColorHex: "FF0000"}
	c := models.Tag{ID: "1", Name: "grammar", ColorHex: "00FF00"}

	assert.True(t, a.SameAppearance(b))
	assert.False(t, a.SameAppearance(c))
}
