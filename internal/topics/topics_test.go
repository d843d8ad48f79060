package topics_test

import (
	"chatup/backend/internal/topics"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPicker_LoadsEmbeddedTopics(t *testing.T) {
	p, err := topics.NewDefaultPicker()
	require.NoError(t, err)

	assert.Greater(t, p.Len(), 0)
	topic := p.Random(nil)
	assert.GreaterOrEqual(t, topic.Index, 0)
	require.NotNil(t, topic.Text)
	assert.NotEmpty(t, *topic.Text)
}

func TestRandom_SkipsExcluded(t *testing.T) {
	p := topics.NewPicker([]string{"a", "b", "c"}, rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 50; i++ {
		topic := p.Random([]int{0, 2, 0, 99, -4})
		require.NotNil(t, topic.Text)
		assert.Equal(t, 1, topic.Index)
		assert.Equal(t, "b", *topic.Text)
	}
}

func TestRandom_AllExcluded(t *testing.T) {
	p := topics.NewPicker([]string{"a", "b"}, rand.New(rand.NewPCG(1, 2)))

	topic := p.Random([]int{1, 0})

	assert.Equal(t, -1, topic.Index)
	assert.Nil(t, topic.Text)
}
