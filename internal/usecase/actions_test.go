package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dining-concierge/internal/domain"
)

func TestElicitSlot(t *testing.T) {
	attrs := map[string]string{"a": "b"}
	slots := domain.Slots{domain.SlotCuisine: "Italian", domain.SlotLocation: "Manhattan"}

	action := ElicitSlot(attrs, domain.IntentDiningSuggestions, slots, domain.SlotCuisine, "pick another")
	require.Equal(t, domain.ActionElicitSlot, action.Type)
	require.Equal(t, domain.StateInProgress, action.State)
	require.Equal(t, domain.SlotCuisine, action.SlotToElicit)
	require.Equal(t, "pick another", action.Message)
	require.Equal(t, attrs, action.SessionAttributes)
	require.Equal(t, domain.Slots{domain.SlotCuisine: "", domain.SlotLocation: "Manhattan"}, action.Slots)
	require.Equal(t, "Italian", slots[domain.SlotCuisine])
}

func TestElicitSlot_NilSlots(t *testing.T) {
	action := ElicitSlot(nil, domain.IntentDiningSuggestions, nil, domain.SlotEmail, "email?")
	require.Equal(t, domain.Slots{domain.SlotEmail: ""}, action.Slots)
}

func TestClose(t *testing.T) {
	action := Close(nil, domain.IntentThankYou, domain.StateFulfilled, "bye")
	require.Equal(t, domain.Action{
		Type:       domain.ActionClose,
		IntentName: domain.IntentThankYou,
		State:      domain.StateFulfilled,
		Message:    "bye",
	}, action)
}

func TestDelegate(t *testing.T) {
	slots := domain.Slots{domain.SlotCuisine: "Thai"}
	action := Delegate(nil, domain.IntentDiningSuggestions, slots)
	require.Equal(t, domain.ActionDelegate, action.Type)
	require.Equal(t, domain.StateInProgress, action.State)
	require.Empty(t, action.Message)
	require.Equal(t, slots, action.Slots)
}

func TestConfirmIntent(t *testing.T) {
	action := ConfirmIntent(nil, domain.IntentGreeting, "again?")
	require.Equal(t, domain.ActionConfirmIntent, action.Type)
	require.Equal(t, domain.StateInProgress, action.State)
	require.Equal(t, "again?", action.Message)
	require.Nil(t, action.Slots)
}
