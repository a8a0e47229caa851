package playback

// Signal is an OS or remote-control broadcast.
type Signal int

const (
	// SignalNoisy means audio is about to leak out of the speakers, usually
	// because headphones were pulled.
	SignalNoisy Signal = iota
	SignalHeadsetPlugged
	SignalHeadsetUnplugged
	SignalWidgetInit
	SignalWidgetEnable
	SignalWidgetDisable
	SignalPlayPause
	SignalPlay
	SignalPause
	SignalStop
	SignalNext
	SignalPrevious
	SignalLoadLastPlaylist
)

var signalNames = map[Signal]string{
	SignalNoisy:            "noisy",
	SignalHeadsetPlugged:   "headset-plugged",
	SignalHeadsetUnplugged: "headset-unplugged",
	SignalWidgetInit:       "widget-init",
	SignalWidgetEnable:     "widget-enable",
	SignalWidgetDisable:    "widget-disable",
	SignalPlayPause:        "play-pause",
	SignalPlay:             "play",
	SignalPause:            "pause",
	SignalStop:             "stop",
	SignalNext:             "next",
	SignalPrevious:         "previous",
	SignalLoadLastPlaylist: "load-last-playlist",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSignal maps a signal name to a Signal.
func ParseSignal(name string) (Signal, bool) {
	for s, n := range signalNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// SignalNames returns every known signal name.
func SignalNames() []string {
	names := make([]string, 0, len(signalNames))
	for s := SignalNoisy; s <= SignalLoadLastPlaylist; s++ {
		names = append(names, signalNames[s])
	}
	return names
}
