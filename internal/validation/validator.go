// Package validation checks DiningSuggestionsIntent slot values against the
// domains the service supports.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dining-concierge/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	minParty   = 1
	maxParty   = 20
)

var (
	defaultLocations = []string{"Manhattan"}
	defaultCuisines  = []string{"Chinese", "Japanese", "Thai"}

	// The consecutive-dot rule is checked separately; RE2 has no look-ahead.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._%+-]*@[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,10}$`)
)

// Result is the outcome of Validate. ViolatedSlot and Message are only set
// when Valid is false.
type Result struct {
	Valid        bool
	ViolatedSlot string
	Message      string
}

func valid() Result { return Result{Valid: true} }

func invalid(slot, message string) Result {
	return Result{ViolatedSlot: slot, Message: message}
}

// Validator is safe for concurrent use once constructed.
type Validator struct {
	locations []string
	cuisines  []string
	now       func() time.Time
	loc       *time.Location
}

type Option func(*Validator)

// WithLocations replaces the supported locations.
func WithLocations(locations ...string) Option {
	return func(v *Validator) {
		v.locations = locations
	}
}

// WithCuisines replaces the supported cuisines.
func WithCuisines(cuisines ...string) Option {
	return func(v *Validator) {
		v.cuisines = cuisines
	}
}

// WithClock overrides the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithLocation sets the time zone dining dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		locations: defaultLocations,
		cuisines:  defaultCuisines,
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the provided slots in priority order and reports the first
// violation. Slots that have not been provided yet are skipped.
func (v *Validator) Validate(slots domain.Slots) Result {
	checks := []struct {
		slot  string
		check func(string) (bool, string)
	}{
		{domain.SlotLocation, v.checkLocation},
		{domain.SlotCuisine, v.checkCuisine},
		{domain.SlotDiningDate, v.checkDate},
		{domain.SlotNumberOfPeople, checkPartySize},
		{domain.SlotEmail, checkEmail},
	}
	for _, c := range checks {
		value := strings.TrimSpace(slots.Get(c.slot))
		if value == "" {
			continue
		}
		if ok, msg := c.check(value); !ok {
			return invalid(c.slot, msg)
		}
	}
	return valid()
}

func (v *Validator) checkLocation(location string) (bool, string) {
	if containsFold(v.locations, location) {
		return true, ""
	}
	return false, "Sorry, we only support " + humanList(v.locations) + " at this time. Please say " + humanList(v.locations) + "."
}

func (v *Validator) checkCuisine(cuisine string) (bool, string) {
	if containsFold(v.cuisines, cuisine) {
		return true, ""
	}
	return false, "Sorry, we only support " + humanList(v.cuisines) + " cuisines at this time. Please choose one of these cuisines."
}

func (v *Validator) checkDate(date string) (bool, string) {
	d, err := time.ParseInLocation(dateLayout, date, v.loc)
	if err != nil {
		return false, "The date format is invalid. Please use YYYY-MM-DD format."
	}
	now := v.now().In(v.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
	if d.Before(today) {
		return false, "Please provide a future date."
	}
	return true, ""
}

func checkPartySize(raw string) (bool, string) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, "The number of people format is invalid. Please provide a number between 1 and 20."
	}
	if n < minParty || n > maxParty {
		return false, "Please provide a number between 1 and 20."
	}
	return true, ""
}

func checkEmail(email string) (bool, string) {
	if strings.Contains(email, "..") || !emailPattern.MatchString(email) {
		return false, "Please provide a valid email address."
	}
	return true, ""
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// humanList renders "A", "A and B" or "A, B, and C".
func humanList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
