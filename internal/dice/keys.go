package dice

// Action tells a front end what a key press did.
type Action int

const (
	ActionNone Action = iota
	ActionRestart
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionRestart:
		return "restart"
	case ActionQuit:
		return "quit"
	}
	return "none"
}

var adjustments = map[string]func(*Params){
	"a": func(p *Params) { p.PosX -= PosStep },
	"z": func(p *Params) { p.PosX += PosStep },
	"s": func(p *Params) { p.PosY -= PosStep },
	"x": func(p *Params) { p.PosY += PosStep },
	"d": func(p *Params) { p.PosZ -= PosStep },
	"c": func(p *Params) { p.PosZ += PosStep },
	"f": func(p *Params) { p.ForceX -= ForceStep },
	"v": func(p *Params) { p.ForceX += ForceStep },
	"g": func(p *Params) { p.ForceY -= ForceStep },
	"b": func(p *Params) { p.ForceY += ForceStep },
	"h": func(p *Params) { p.ForceZ -= ForceStep },
	"n": func(p *Params) { p.ForceZ += ForceStep },
	"j": func(p *Params) { p.Spin -= SpinStep },
	"m": func(p *Params) { p.Spin += SpinStep },
	"k": func(p *Params) {
		if p.FrameGap > 1 {
			p.FrameGap--
		}
	},
	",": func(p *Params) { p.FrameGap++ },
}

// IsParamKey reports whether key adjusts a drop parameter.
func IsParamKey(key string) bool {
	_, ok := adjustments[key]
	return ok
}

// HandleKey applies the keyboard scheme: parameter keys adjust a value and
// restart the drop sequence, r restarts as is, q asks to quit. Unmapped keys
// leave the scene alone, so viewport keys (pause, orbit, theme) never clear
// the dice.
func (s *Scene) HandleKey(key string) Action {
	switch key {
	case "q":
		return ActionQuit
	case "r":
		s.Restart()
		return ActionRestart
	}
	adjust, ok := adjustments[key]
	if !ok {
		return ActionNone
	}
	adjust(&s.params)
	s.log.Debug("parameters changed", "key", key)
	s.Restart()
	return ActionRestart
}
