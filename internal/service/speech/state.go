package speech

// State — состояние готовности движка речи.
// NotReady переходит ровно один раз в Ready или Failed; оба состояния конечные.
type State int32

const (
	NotReady State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotReady:
		return "not-ready"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
