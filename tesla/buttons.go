package tesla

// ButtonType identifies a driver control that produces edge events.
type ButtonType int

const (
	ButtonUnknown ButtonType = iota
	ButtonLeftBlinker
	ButtonRightBlinker
	ButtonAccelCruise
	ButtonDecelCruise
	ButtonCancel
	ButtonResumeCruise
	ButtonSetCruise
)

func (b ButtonType) String() string {
	switch b {
	case ButtonLeftBlinker:
		return "leftBlinker"
	case ButtonRightBlinker:
		return "rightBlinker"
	case ButtonAccelCruise:
		return "accelCruise"
	case ButtonDecelCruise:
		return "decelCruise"
	case ButtonCancel:
		return "cancel"
	case ButtonResumeCruise:
		return "resumeCruise"
	case ButtonSetCruise:
		return "setCruise"
	}
	return "unknown"
}

// ButtonEvent is a press or release edge.
type ButtonEvent struct {
	Type    ButtonType
	Pressed bool
}

// ButtonDefinition maps a raw signal to a button: the button is pressed while
// the signal holds any of Values.
type ButtonDefinition struct {
	Type    ButtonType
	Message string
	Signal  string
	Values  []float64
}

func (d ButtonDefinition) pressed(v float64) bool {
	for _, want := range d.Values {
		if v == want {
			return true
		}
	}
	return false
}

// Model S/X buttons, all on STW_ACTN_RQ (chassis bus).
var familyBButtons = []ButtonDefinition{
	{ButtonLeftBlinker, "STW_ACTN_RQ", "TurnIndLvr_Stat", []float64{1}},
	{ButtonRightBlinker, "STW_ACTN_RQ", "TurnIndLvr_Stat", []float64{2}},
	{ButtonAccelCruise, "STW_ACTN_RQ", "SpdCtrlLvr_Stat", []float64{4, 16}},
	{ButtonDecelCruise, "STW_ACTN_RQ", "SpdCtrlLvr_Stat", []float64{8, 32}},
	{ButtonCancel, "STW_ACTN_RQ", "SpdCtrlLvr_Stat", []float64{1}},
	{ButtonResumeCruise, "STW_ACTN_RQ", "SpdCtrlLvr_Stat", []float64{2}},
}

// Model 3/Y buttons, on the vehicle bus stalks.
var familyAButtons = []ButtonDefinition{
	{ButtonLeftBlinker, "SCCM_leftStalk", "SCCM_turnIndicatorStalkStatus", []float64{3, 4}},
	{ButtonRightBlinker, "SCCM_leftStalk", "SCCM_turnIndicatorStalkStatus", []float64{1, 2}},
	{ButtonCancel, "SCCM_rightStalk", "SCCM_rightStalkStatus", []float64{1, 2}},
	{ButtonSetCruise, "SCCM_rightStalk", "SCCM_rightStalkStatus", []float64{3, 4}},
}

// buttonTracker remembers the last pressed state per button.
type buttonTracker struct {
	defs []ButtonDefinition
	last map[ButtonType]bool
}

func newButtonTracker(defs []ButtonDefinition) *buttonTracker {
	t := &buttonTracker{defs: defs, last: make(map[ButtonType]bool, len(defs))}
	for _, d := range defs {
		t.last[d.Type] = false
	}
	return t
}

// Update returns the edges between the remembered state and the current
// values. The remembered state is always overwritten.
func (t *buttonTracker) Update(value func(msg, sig string) float64) []ButtonEvent {
	var events []ButtonEvent
	for _, d := range t.defs {
		state := d.pressed(value(d.Message, d.Signal))
		if t.last[d.Type] != state {
			events = append(events, ButtonEvent{Type: d.Type, Pressed: state})
		}
		t.last[d.Type] = state
	}
	return events
}
