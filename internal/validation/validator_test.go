package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dining-concierge/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func newTestValidator(opts ...Option) *Validator {
	return New(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func validSlots() domain.Slots {
	return domain.Slots{
		domain.SlotLocation:       "Manhattan",
		domain.SlotCuisine:        "Thai",
		domain.SlotDiningDate:     "2026-03-20",
		domain.SlotDiningTime:     "19:00",
		domain.SlotNumberOfPeople: "4",
		domain.SlotEmail:          "guest@example.com",
	}
}

func expectViolation(t *testing.T, res Result, slot string) {
	t.Helper()
	require.False(t, res.Valid)
	require.Equal(t, slot, res.ViolatedSlot)
	require.NotEmpty(t, res.Message)
}

func TestValidate_AllValid(t *testing.T) {
	res := newTestValidator().Validate(validSlots())
	require.True(t, res.Valid)
	require.Empty(t, res.ViolatedSlot)
	require.Empty(t, res.Message)
}

func TestValidate_EmptySlotsAreNotYetProvided(t *testing.T) {
	res := newTestValidator().Validate(domain.Slots{})
	require.True(t, res.Valid)

	res = newTestValidator().Validate(nil)
	require.True(t, res.Valid)

	res = newTestValidator().Validate(domain.Slots{domain.SlotCuisine: "  "})
	require.True(t, res.Valid)
}

func TestValidate_Location(t *testing.T) {
	v := newTestValidator()
	for _, ok := range []string{"Manhattan", "manhattan", "MANHATTAN"} {
		slots := validSlots()
		slots[domain.SlotLocation] = ok
		require.True(t, v.Validate(slots).Valid, ok)
	}

	slots := validSlots()
	slots[domain.SlotLocation] = "Brooklyn"
	res := v.Validate(slots)
	expectViolation(t, res, domain.SlotLocation)
	require.Contains(t, res.Message, "Manhattan")
}

func TestValidate_Cuisine(t *testing.T) {
	v := newTestValidator()
	for _, ok := range []string{"chinese", "Japanese", "THAI"} {
		slots := validSlots()
		slots[domain.SlotCuisine] = ok
		require.True(t, v.Validate(slots).Valid, ok)
	}

	slots := validSlots()
	slots[domain.SlotCuisine] = "Italian"
	res := v.Validate(slots)
	expectViolation(t, res, domain.SlotCuisine)
	require.Contains(t, res.Message, "Chinese, Japanese, and Thai")
}

func TestValidate_Date(t *testing.T) {
	v := newTestValidator()

	cases := []struct {
		date  string
		valid bool
	}{
		{"2026-03-14", true},
		{"2026-03-15", true},
		{"2027-01-01", true},
		{"2026-03-13", false},
		{"2024-13-01", false},
		{"03/20/2026", false},
		{"2026-02-30", false},
	}
	for _, tc := range cases {
		slots := validSlots()
		slots[domain.SlotDiningDate] = tc.date
		res := v.Validate(slots)
		if tc.valid {
			require.True(t, res.Valid, tc.date)
			continue
		}
		expectViolation(t, res, domain.SlotDiningDate)
	}
}

func TestValidate_Date_PastAndMalformedHaveDistinctMessages(t *testing.T) {
	v := newTestValidator()

	slots := validSlots()
	slots[domain.SlotDiningDate] = "2026-03-13"
	past := v.Validate(slots)

	slots[domain.SlotDiningDate] = "2024-13-01"
	malformed := v.Validate(slots)

	require.NotEqual(t, past.Message, malformed.Message)
	require.Contains(t, malformed.Message, "YYYY-MM-DD")
}

func TestValidate_Date_UsesConfiguredTimeZone(t *testing.T) {
	// 02:00 UTC on the 14th is still the 13th in New York.
	ny := time.FixedZone("EST", -5*60*60)
	early := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	v := New(WithClock(func() time.Time { return early }), WithLocation(ny))

	slots := validSlots()
	slots[domain.SlotDiningDate] = "2026-03-13"
	require.True(t, v.Validate(slots).Valid)
}

func TestValidate_NumberOfPeople(t *testing.T) {
	v := newTestValidator()
	for _, ok := range []string{"1", "20", "7"} {
		slots := validSlots()
		slots[domain.SlotNumberOfPeople] = ok
		require.True(t, v.Validate(slots).Valid, ok)
	}
	for _, bad := range []string{"0", "21", "abc", "-3", "2.5"} {
		slots := validSlots()
		slots[domain.SlotNumberOfPeople] = bad
		expectViolation(t, v.Validate(slots), domain.SlotNumberOfPeople)
	}
}

func TestValidate_Email(t *testing.T) {
	v := newTestValidator()
	for _, ok := range []string{"a@b.co", "first.last+tag@mail.example.org", "x_1@sub-domain.io"} {
		slots := validSlots()
		slots[domain.SlotEmail] = ok
		require.True(t, v.Validate(slots).Valid, ok)
	}
	for _, bad := range []string{
		"a..b@example.com",
		"@b.com",
		".a@b.com",
		"a@b@c.com",
		"a@b",
		"a@b.c",
		"a@b.abcdefghijk",
		"a@b.c0m",
	} {
		slots := validSlots()
		slots[domain.SlotEmail] = bad
		expectViolation(t, v.Validate(slots), domain.SlotEmail)
	}
}

func TestValidate_ReportsHighestPriorityViolation(t *testing.T) {
	v := newTestValidator()
	slots := domain.Slots{
		domain.SlotLocation:       "Queens",
		domain.SlotCuisine:        "Italian",
		domain.SlotDiningDate:     "yesterday",
		domain.SlotNumberOfPeople: "99",
		domain.SlotEmail:          "nope",
	}

	order := []string{
		domain.SlotLocation,
		domain.SlotCuisine,
		domain.SlotDiningDate,
		domain.SlotNumberOfPeople,
		domain.SlotEmail,
	}
	for _, want := range order {
		expectViolation(t, v.Validate(slots), want)
		delete(slots, want)
	}
	require.True(t, v.Validate(slots).Valid)
}

func TestNew_CustomAllowLists(t *testing.T) {
	v := newTestValidator(WithLocations("Brooklyn", "Queens"), WithCuisines("Italian"))

	slots := validSlots()
	slots[domain.SlotLocation] = "queens"
	slots[domain.SlotCuisine] = "italian"
	require.True(t, v.Validate(slots).Valid)

	slots[domain.SlotLocation] = "Manhattan"
	res := v.Validate(slots)
	expectViolation(t, res, domain.SlotLocation)
	require.Contains(t, res.Message, "Brooklyn and Queens")
}

func TestHumanList(t *testing.T) {
	require.Equal(t, "", humanList(nil))
	require.Equal(t, "A", humanList([]string{"A"}))
	require.Equal(t, "A and B", humanList([]string{"A", "B"}))
	require.Equal(t, "A, B, and C", humanList([]string{"A", "B", "C"}))
}
