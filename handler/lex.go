package handler

import (
	"github.com/aws/aws-lambda-go/events"

	"dining-concierge/internal/domain"
)

const (
	defaultUserID    = "defaultUser"
	contentPlainText = "PlainText"
)

// LexEvent is the Lex V2 code hook input. Only the fields the dialog reads
// are declared.
type LexEvent struct {
	SessionID        string          `json:"sessionId"`
	InputTranscript  string          `json:"inputTranscript,omitempty"`
	InvocationSource string          `json:"invocationSource"`
	SessionState     LexSessionState `json:"sessionState"`
}

type LexSessionState struct {
	SessionAttributes events.SessionAttributes `json:"sessionAttributes,omitempty"`
	DialogAction      *LexDialogAction         `json:"dialogAction,omitempty"`
	Intent            LexIntent                `json:"intent"`
}

type LexDialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

type LexIntent struct {
	Name              string              `json:"name"`
	Slots             map[string]*LexSlot `json:"slots"`
	State             string              `json:"state,omitempty"`
	ConfirmationState string              `json:"confirmationState,omitempty"`
}

type LexSlot struct {
	Shape string        `json:"shape,omitempty"`
	Value *LexSlotValue `json:"value,omitempty"`
}

type LexSlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue,omitempty"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

type LexMessage struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// LexResponse is what the code hook returns to Lex.
type LexResponse struct {
	SessionState LexSessionState `json:"sessionState"`
	Messages     []LexMessage    `json:"messages,omitempty"`
}

// toTurn flattens the event. Slots Lex reports as null are kept with an
// empty value so they round-trip as null.
func toTurn(event LexEvent) domain.Turn {
	userID := event.SessionID
	if userID == "" {
		userID = defaultUserID
	}

	intent := event.SessionState.Intent
	slots := make(domain.Slots, len(intent.Slots))
	for name, slot := range intent.Slots {
		if slot == nil || slot.Value == nil {
			slots[name] = ""
			continue
		}
		slots[name] = slot.Value.InterpretedValue
	}

	return domain.Turn{
		UserID:            userID,
		IntentName:        domain.IntentName(intent.Name),
		ConfirmationState: domain.ConfirmationState(intent.ConfirmationState),
		InvocationSource:  domain.InvocationSource(event.InvocationSource),
		Slots:             slots,
		SessionAttributes: event.SessionState.SessionAttributes,
	}
}

func toResponse(action domain.Action, original map[string]*LexSlot) LexResponse {
	resp := LexResponse{
		SessionState: LexSessionState{
			SessionAttributes: action.SessionAttributes,
			DialogAction: &LexDialogAction{
				Type:         string(action.Type),
				SlotToElicit: action.SlotToElicit,
			},
			Intent: LexIntent{
				Name:  string(action.IntentName),
				Slots: toLexSlots(action.Slots, original),
				State: string(action.State),
			},
		},
	}
	if action.Type == domain.ActionConfirmIntent {
		resp.SessionState.Intent.ConfirmationState = string(domain.ConfirmationNone)
	}
	if action.Message != "" {
		resp.Messages = []LexMessage{{ContentType: contentPlainText, Content: action.Message}}
	}
	return resp
}

// toLexSlots echoes the slot objects Lex sent when their value is unchanged,
// so resolved values survive, and sends cleared slots back as null.
func toLexSlots(slots domain.Slots, original map[string]*LexSlot) map[string]*LexSlot {
	if slots == nil {
		return nil
	}
	out := make(map[string]*LexSlot, len(slots))
	for name, value := range slots {
		if value == "" {
			out[name] = nil
			continue
		}
		if orig := original[name]; orig != nil && orig.Value != nil && orig.Value.InterpretedValue == value {
			out[name] = orig
			continue
		}
		out[name] = &LexSlot{
			Shape: "Scalar",
			Value: &LexSlotValue{
				OriginalValue:    value,
				InterpretedValue: value,
				ResolvedValues:   []string{value},
			},
		}
	}
	return out
}
