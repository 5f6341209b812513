// Package arbiter decides which of the tracked people currently drives input.
package arbiter

import (
	"github.com/ayusman/pinchpoint/internal/body"
	"github.com/ayusman/pinchpoint/internal/hand"
)

// MaxPeople is the number of people tracked at once.
const MaxPeople = 2

// DefaultNames are the names given to people in slot order.
var DefaultNames = [MaxPeople]string{"pete", "ant"}

// Person is one tracked subject: a body and the hands associated with it.
type Person struct {
	Name  string
	Body  *body.Tracker
	Hands *hand.Pair
}

// NewPerson creates a person with fresh trackers.
func NewPerson(name string, bodyConfig body.Config, handConfig hand.Config) *Person {
	return &Person{
		Name:  name,
		Body:  body.NewTracker(bodyConfig),
		Hands: hand.NewPair(handConfig),
	}
}
