package scrim

// MenuSlots are the time slots offered by the menu-based flow.
var MenuSlots = []string{"18:00", "19:00", "20:00", "21:00", "22:00", "23:00"}

// CommandSlots are the wider choice list the direct /scrim-register
// command accepts.
var CommandSlots = []string{
	"13:00", "14:00", "15:00", "16:00", "17:00", "18:00",
	"19:00", "20:00", "21:00", "22:00", "23:00", "24:00",
}

var slotLabels = map[string]string{
	"13:00": "1:00 PM IST",
	"14:00": "2:00 PM IST",
	"15:00": "3:00 PM IST",
	"16:00": "4:00 PM IST",
	"17:00": "5:00 PM IST",
	"18:00": "6:00 PM IST",
	"19:00": "7:00 PM IST",
	"20:00": "8:00 PM IST",
	"21:00": "9:00 PM IST",
	"22:00": "10:00 PM IST",
	"23:00": "11:00 PM IST",
	"24:00": "12:00 PM IST",
}

// SlotLabel returns the display label for a slot, falling back to the raw
// value for unknown slots.
func SlotLabel(slot string) string {
	if label, ok := slotLabels[slot]; ok {
		return label
	}

	return slot
}

// ValidSlot reports whether slot is in the given catalog.
func ValidSlot(slot string, catalog []string) bool {
	for _, s := range catalog {
		if s == slot {
			return true
		}
	}

	return false
}
