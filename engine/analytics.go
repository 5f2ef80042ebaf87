package engine

// ----- Analytics ----- //

// Event names emitted by the engine.
const (
	EventEngineStart    = "engine_start"
	EventEngineStop     = "engine_stop"
	EventSoundRandomize = "sound_randomize"
	EventRecordStart    = "record_start"
	EventRecordStop     = "record_stop"
	EventGuideOpen      = "guide_open"
)

// AnalyticsSink receives fire-and-forget event notifications. A nil sink is
// a valid no-op; implementations must never block the caller.
type AnalyticsSink interface {
	Event(name string, params map[string]string)
}

// emit is the nil-safe dispatch helper used throughout the engine.
func emit(sink AnalyticsSink, name string, params map[string]string) {
	if sink == nil {
		return
	}
	sink.Event(name, params)
}
