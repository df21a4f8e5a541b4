package domain

// IntentName identifies the intent the recognizer matched for a turn.
type IntentName string

const (
	IntentGreeting          IntentName = "GreetingIntent"
	IntentThankYou          IntentName = "ThankYouIntent"
	IntentDiningSuggestions IntentName = "DiningSuggestionsIntent"
)

// ConfirmationState is only meaningful for GreetingIntent.
type ConfirmationState string

const (
	ConfirmationNone      ConfirmationState = "None"
	ConfirmationConfirmed ConfirmationState = "Confirmed"
	ConfirmationDenied    ConfirmationState = "Denied"
)

// InvocationSource tells whether the recognizer is still gathering slots
// (DialogCodeHook) or is ready for the request to be acted on
// (FulfillmentCodeHook).
type InvocationSource string

const (
	SourceDialogCodeHook      InvocationSource = "DialogCodeHook"
	SourceFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

type DialogState string

const (
	StateInProgress DialogState = "InProgress"
	StateFulfilled  DialogState = "Fulfilled"
	StateFailed     DialogState = "Failed"
)

type ActionType string

const (
	ActionElicitSlot    ActionType = "ElicitSlot"
	ActionClose         ActionType = "Close"
	ActionDelegate      ActionType = "Delegate"
	ActionConfirmIntent ActionType = "ConfirmIntent"
)

// Slot names collected by DiningSuggestionsIntent.
const (
	SlotLocation       = "Location"
	SlotCuisine        = "Cuisine"
	SlotDiningDate     = "DiningDate"
	SlotDiningTime     = "DiningTime"
	SlotNumberOfPeople = "NumberOfPeople"
	SlotEmail          = "Email"
)

// Slots maps a slot name to its interpreted value. An empty value means the
// slot has not been provided yet.
type Slots map[string]string

// Get returns the value for name, or "" when the slot is absent.
func (s Slots) Get(name string) string {
	if s == nil {
		return ""
	}
	return s[name]
}

// Clone returns a copy that can be modified without touching s.
func (s Slots) Clone() Slots {
	if s == nil {
		return nil
	}
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Turn is one invocation of the dialog code hook.
type Turn struct {
	UserID            string
	IntentName        IntentName
	ConfirmationState ConfirmationState
	InvocationSource  InvocationSource
	Slots             Slots
	SessionAttributes map[string]string
}

// Action is the instruction handed back to the recognizer. Which fields are
// set depends on Type.
type Action struct {
	Type              ActionType
	IntentName        IntentName
	State             DialogState
	SlotToElicit      string
	Slots             Slots
	Message           string
	SessionAttributes map[string]string
}
