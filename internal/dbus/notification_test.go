package dbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeIDIsDeterministic(t *testing.T) {
	n := Notification{App: "mail", Summary: "URGENT", Body: "reply now"}
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, SynthesizeID(n, at), SynthesizeID(n, at))
}

func TestSynthesizeIDVariesWithContentAndTime(t *testing.T) {
	n := Notification{App: "mail", Summary: "URGENT", Body: "reply now"}
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	other := n
	other.Body = "never mind"
	assert.NotEqual(t, SynthesizeID(n, at), SynthesizeID(other, at))

	assert.NotEqual(t, SynthesizeID(n, at), SynthesizeID(n, at.Add(time.Millisecond)))
}
