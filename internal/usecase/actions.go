package usecase

import "dining-concierge/internal/domain"

// ElicitSlot asks the recognizer to re-prompt for slotToElicit. The slot is
// cleared in the returned slots so the stale value is not replayed.
func ElicitSlot(sessionAttrs map[string]string, intent domain.IntentName, slots domain.Slots, slotToElicit, message string) domain.Action {
	out := slots.Clone()
	if out == nil {
		out = domain.Slots{}
	}
	out[slotToElicit] = ""
	return domain.Action{
		Type:              domain.ActionElicitSlot,
		IntentName:        intent,
		State:             domain.StateInProgress,
		SlotToElicit:      slotToElicit,
		Slots:             out,
		Message:           message,
		SessionAttributes: sessionAttrs,
	}
}

// Close ends the turn with the given fulfillment state.
func Close(sessionAttrs map[string]string, intent domain.IntentName, fulfillmentState domain.DialogState, message string) domain.Action {
	return domain.Action{
		Type:              domain.ActionClose,
		IntentName:        intent,
		State:             fulfillmentState,
		Message:           message,
		SessionAttributes: sessionAttrs,
	}
}

// Delegate lets the recognizer pick the next step. It carries no message.
func Delegate(sessionAttrs map[string]string, intent domain.IntentName, slots domain.Slots) domain.Action {
	return domain.Action{
		Type:              domain.ActionDelegate,
		IntentName:        intent,
		State:             domain.StateInProgress,
		Slots:             slots.Clone(),
		SessionAttributes: sessionAttrs,
	}
}

// ConfirmIntent asks the user a yes/no question about the current intent.
func ConfirmIntent(sessionAttrs map[string]string, intent domain.IntentName, message string) domain.Action {
	return domain.Action{
		Type:              domain.ActionConfirmIntent,
		IntentName:        intent,
		State:             domain.StateInProgress,
		Message:           message,
		SessionAttributes: sessionAttrs,
	}
}
