package notification

import (
	"testing"

	"echotrail/internal/domain/entity"
	"echotrail/internal/domain/service"

	"github.com/stretchr/testify/assert"
)

func TestProximityContent_SingleTrigger(t *testing.T) {
	title, body := ProximityContent([]*entity.TriggerEvent{
		{NoteID: "a", Title: "Old Oak Bench", DistanceMeters: 42},
	})

	assert.Equal(t, "You've discovered a note!", title)
	assert.Contains(t, body, "Old Oak Bench")
}

func TestProximityContent_Batch(t *testing.T) {
	title, _ := ProximityContent([]*entity.TriggerEvent{
		{NoteID: "a", Title: "one"},
		{NoteID: "b", Title: "two"},
		{NoteID: "c", Title: "three"},
	})

	assert.Equal(t, "You've discovered 3 notes!", title)
}

func TestProximityPayload(t *testing.T) {
	payload := ProximityPayload([]*entity.TriggerEvent{
		{NoteID: "a"},
		{NoteID: "b"},
	})

	assert.Equal(t, service.ProximityPayloadType, payload["type"])
	assert.Equal(t, "a,b", payload["note_ids"])
	assert.Equal(t, "2", payload["count"])
}
