package domain

import "time"

// DiningRequest is the unit of work carried on the request queue. The JSON
// field names are the queue wire format.
type DiningRequest struct {
	RequestID      string `json:"request_id,omitempty"`
	Location       string `json:"location"`
	Cuisine        string `json:"cuisine"`
	DiningDate     string `json:"dining_date"`
	DiningTime     string `json:"dining_time"`
	NumberOfPeople string `json:"number_of_people"`
	Email          string `json:"email"`
}

// DiningRequestFromSlots builds a request from validated slot values.
func DiningRequestFromSlots(slots Slots) DiningRequest {
	return DiningRequest{
		Location:       slots.Get(SlotLocation),
		Cuisine:        slots.Get(SlotCuisine),
		DiningDate:     slots.Get(SlotDiningDate),
		DiningTime:     slots.Get(SlotDiningTime),
		NumberOfPeople: slots.Get(SlotNumberOfPeople),
		Email:          slots.Get(SlotEmail),
	}
}

// SessionRecord is the last validated request made by a user.
type SessionRecord struct {
	UserID             string
	LastLocation       string
	LastCuisine        string
	LastDiningDate     string
	LastDiningTime     string
	LastNumberOfPeople string
	LastEmail          string
	LastUpdated        time.Time
}

// NewSessionRecord captures req as the latest request of userID.
func NewSessionRecord(userID string, req DiningRequest, now time.Time) SessionRecord {
	return SessionRecord{
		UserID:             userID,
		LastLocation:       req.Location,
		LastCuisine:        req.Cuisine,
		LastDiningDate:     req.DiningDate,
		LastDiningTime:     req.DiningTime,
		LastNumberOfPeople: req.NumberOfPeople,
		LastEmail:          req.Email,
		LastUpdated:        now.UTC(),
	}
}

// DiningRequest rebuilds the stored request. RequestID is left empty; the
// caller stamps a fresh one before enqueueing.
func (r SessionRecord) DiningRequest() DiningRequest {
	return DiningRequest{
		Location:       r.LastLocation,
		Cuisine:        r.LastCuisine,
		DiningDate:     r.LastDiningDate,
		DiningTime:     r.LastDiningTime,
		NumberOfPeople: r.LastNumberOfPeople,
		Email:          r.LastEmail,
	}
}
