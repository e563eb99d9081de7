package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivelo/pkg/event"
)

func TestEventRoundTrip(t *testing.T) {
	evt, err := event.New(event.TypeUpdate, "trip-1", map[string]int{"version": 3})
	require.NoError(t, err)

	raw, err := evt.Marshal()
	require.NoError(t, err)

	got, err := event.Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, event.TypeUpdate, got.Type)
	assert.Equal(t, "trip-1", got.DocumentID)

	data, err := event.ParseData[map[string]int](got)
	require.NoError(t, err)
	assert.Equal(t, 3, data["version"])
}

func TestDeleteEventOmitsData(t *testing.T) {
	evt, err := event.New(event.TypeDelete, "trip-1", nil)
	require.NoError(t, err)

	raw, err := evt.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"data"`)
}

func TestMutationTypes(t *testing.T) {
	for _, typ := range []string{
		event.TypeCreate, event.TypeUpdate, event.TypeDelete,
		event.TypeAddPlace, event.TypeRemovePlace, event.TypeTripsUpdate,
	} {
		assert.True(t, event.Mutation(typ), typ)
	}
	assert.False(t, event.Mutation("ping"))
	assert.False(t, event.Mutation(""))
	assert.False(t, event.Mutation("insert"))
}
