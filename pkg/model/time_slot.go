package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	FirstDay      = 0  // Monday
	LastDay       = 4  // Friday
	FirstHour     = 8  // First hour a slot may start at
	LastStartHour = 16 // Last hour of the universal slot set
	LastHour      = 17 // Last hour a slot may start at
	DayEnd        = 18 // No slot may extend past this hour
)

var dayNames = map[int]string{
	0: "Monday",
	1: "Tuesday",
	2: "Wednesday",
	3: "Thursday",
	4: "Friday",
}

// TimeSlot is a span of whole hours on a weekday. It is a value type: copies never alias.
type TimeSlot struct {
	Day      int `mapstructure:"day" validate:"min=0,max=4"`
	Hour     int `mapstructure:"hour" validate:"min=8,max=17"`
	Duration int `mapstructure:"duration" validate:"min=1"`
}

// End returns the hour at which the slot finishes
func (slot TimeSlot) End() int {
	return slot.Hour + slot.Duration
}

// Overlaps checks whether both slots share the same day and their [hour, hour+duration) ranges intersect
func (slot TimeSlot) Overlaps(other TimeSlot) bool {
	if slot.Day != other.Day {
		return false
	}
	return slot.Hour < other.End() && other.Hour < slot.End()
}

// SameStart checks whether both slots begin at the same day and hour, regardless of their duration
func (slot TimeSlot) SameStart(other TimeSlot) bool {
	return slot.Day == other.Day && slot.Hour == other.Hour
}

// ID returns the identifier of the slot's starting hour as used by the constraint tree
func (slot TimeSlot) ID() string {
	return SlotID(slot.Day, slot.Hour)
}

func (slot TimeSlot) String() string {
	return fmt.Sprintf("%v %d:00-%d:00", DayName(slot.Day), slot.Hour, slot.End())
}

func SlotID(day, hour int) string {
	return fmt.Sprintf("ts_%d_%d", day, hour)
}

// ParseSlotID recovers the one-hour slot encoded by SlotID
func ParseSlotID(id string) (TimeSlot, bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "ts" {
		return TimeSlot{}, false
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeSlot{}, false
	}
	hour, err := strconv.Atoi(parts[2])
	if err != nil {
		return TimeSlot{}, false
	}
	return TimeSlot{Day: day, Hour: hour, Duration: 1}, true
}

func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return "Unknown"
}

// WeekSlots returns every one-hour slot from Monday to Friday starting between FirstHour and LastStartHour
func WeekSlots() []TimeSlot {
	slots := make([]TimeSlot, 0, (LastDay-FirstDay+1)*(LastStartHour-FirstHour+1))
	for day := FirstDay; day <= LastDay; day++ {
		for hour := FirstHour; hour <= LastStartHour; hour++ {
			slots = append(slots, TimeSlot{Day: day, Hour: hour, Duration: 1})
		}
	}
	return slots
}
