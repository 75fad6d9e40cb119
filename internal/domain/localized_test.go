package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocalized(t *testing.T) {
	t.Run("preferred language present", func(t *testing.T) {
		got, err := ResolveLocalized(map[string]string{"en": "Foo", "ja": "フー"}, []string{"ja", "en"}, "en")
		require.NoError(t, err)
		assert.Equal(t, "Foo", got)
	})

	t.Run("falls back to first key", func(t *testing.T) {
		got, err := ResolveLocalized(map[string]string{"ja": "フー"}, []string{"ja"}, "en")
		require.NoError(t, err)
		assert.Equal(t, "フー", got)
	})

	t.Run("empty mapping", func(t *testing.T) {
		_, err := ResolveLocalized(map[string]string{}, nil, "en")
		assert.ErrorIs(t, err, ErrEmptyLocalized)
	})
}

func TestLocalizedString_UnmarshalKeepsOrder(t *testing.T) {
	var l LocalizedString
	require.NoError(t, json.Unmarshal([]byte(`{"ko": "푸", "ja": "フー", "de": "Fu"}`), &l))

	assert.Equal(t, []string{"ko", "ja", "de"}, l.Keys)

	got, err := l.Resolve("en")
	require.NoError(t, err)
	assert.Equal(t, "푸", got)

	got, err = l.Resolve("de")
	require.NoError(t, err)
	assert.Equal(t, "Fu", got)
}

func TestLocalizedString_UnmarshalEmptyArray(t *testing.T) {
	var l LocalizedString
	require.NoError(t, json.Unmarshal([]byte(`[]`), &l))

	_, err := l.Resolve("en")
	assert.ErrorIs(t, err, ErrEmptyLocalized)
}

func TestLocalizedString_UnmarshalRejectsNonObject(t *testing.T) {
	var l LocalizedString
	assert.Error(t, json.Unmarshal([]byte(`"en"`), &l))
}
