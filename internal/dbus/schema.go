package dbus

// Well-known slot names. Schema slots carrying these names feed the
// corresponding Notification field; other names are extracted but not
// mapped.
const (
	SlotApp     = "app"
	SlotIcon    = "icon"
	SlotSummary = "summary"
	SlotBody    = "body"
)

// Slot describes one positional string argument of a protocol frame.
type Slot struct {
	Name string
	// Discard marks arguments that are consumed but never kept (the
	// icon position in the Notify frame).
	Discard bool
	// AllowEmpty lets an empty quoted value fill the slot. Slots
	// without it skip empty values and wait for a non-empty one.
	AllowEmpty bool
}

// Schema is the ordered positional layout of a frame's string
// arguments. The argument order is a property of the upstream
// protocol version; swapping the schema adapts the parser without
// touching its state machine.
type Schema []Slot

// NotifySchema is the layout of org.freedesktop.Notifications.Notify
// as printed by dbus-monitor: app name, icon (discarded), summary,
// body. The icon position accepts an empty value so that the common
// icon-less notification does not shift summary and body by one.
func NotifySchema() Schema {
	return Schema{
		{Name: SlotApp, AllowEmpty: true},
		{Name: SlotIcon, Discard: true, AllowEmpty: true},
		{Name: SlotSummary},
		{Name: SlotBody, AllowEmpty: true},
	}
}

// notification assembles the well-known slots out of extracted values.
func (s Schema) notification(values []string) Notification {
	var n Notification
	for i, slot := range s {
		if slot.Discard || i >= len(values) {
			continue
		}
		switch slot.Name {
		case SlotApp:
			n.App = values[i]
		case SlotSummary:
			n.Summary = values[i]
		case SlotBody:
			n.Body = values[i]
		}
	}
	return n
}
