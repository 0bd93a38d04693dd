package component

// PlayerTag marks the character driven by local input.
type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// ScriptedTag marks characters driven by a script instead of a device.
type ScriptedTag struct{}

var ScriptedTagComponent = NewComponent[ScriptedTag]()
