package component

// Trigger is a volume that flips a Reveal while a named character is inside.
type Trigger struct {
	Name string
	// Target is the character name that activates the trigger.
	Target string
	// Reveal names the Reveal entity toggled by this trigger.
	Reveal string
	Radius float64

	Inside bool
}

var TriggerComponent = NewComponent[Trigger]()

// Reveal is something hidden until a trigger activates it.
type Reveal struct {
	Name   string
	Active bool
}

var RevealComponent = NewComponent[Reveal]()
