package localization_test

import (
	"chatup/backend/internal/localization"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLocalizer_HasSystemNotices(t *testing.T) {
	l, err := localization.NewDefaultLocalizer()
	require.NoError(t, err)

	for _, key := range []string{"partner_joined", "partner_rejoined", "shared_interests"} {
		assert.NotEqual(t, key, l.GetString("en", key), "missing en text for %s", key)
		assert.NotEqual(t, key, l.GetString("hu", key), "missing hu text for %s", key)
	}
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"t/en.json":    {Data: []byte(`{"hello": "Hello", "only_en": "English"}`)},
		"t/hu.json":    {Data: []byte(`{"hello": "Szia"}`)},
		"t/readme.txt": {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizer(fsys, "t")
	require.NoError(t, err)

	assert.Equal(t, "Szia", l.GetString("hu", "hello"))
	assert.Equal(t, "English", l.GetString("hu", "only_en"))
	assert.Equal(t, "Hello", l.GetString("de", "hello"))
	assert.Equal(t, "missing", l.GetString("en", "missing"))
}

func TestNewLocalizer_Errors(t *testing.T) {
	_, err := localization.NewLocalizer(fstest.MapFS{}, "nope")
	assert.Error(t, err)

	_, err = localization.NewLocalizer(fstest.MapFS{"t/en.json": {Data: []byte("{")}}, "t")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	l, err := localization.NewLocalizer(fstest.MapFS{
		"t/en.json": {Data: []byte(`{"shared": "You both like: %s"}`)},
	}, "t")
	require.NoError(t, err)

	assert.Equal(t, "You both like: chess", l.Format("en", "shared", "chess"))
}
