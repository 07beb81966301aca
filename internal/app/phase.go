package app

// Phase tracks the strictly sequential run lifecycle. There is no retry and
// no branching back; a failed phase aborts the run with its name attached.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseModuleSwapped
	PhaseCapturing
	PhaseRouterRunning
	PhaseStopped
	PhasePartitioned
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseModuleSwapped:
		return "module-swapped"
	case PhaseCapturing:
		return "capturing"
	case PhaseRouterRunning:
		return "router-running"
	case PhaseStopped:
		return "stopped"
	case PhasePartitioned:
		return "partitioned"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
