package events

import "github.com/tercet-ai/tercet/internal/core"

// BusObserver adapts the bus to the engine's ProgressObserver port, so
// every consumer sees the same ordered stream the engine emits.
type BusObserver struct {
	bus *Bus
}

// NewBusObserver creates an observer publishing to the given bus.
func NewBusObserver(bus *Bus) *BusObserver {
	return &BusObserver{bus: bus}
}

// StageStarted publishes a stage started event.
func (o *BusObserver) StageStarted(id core.WorkflowID, stage core.Stage) {
	o.bus.Publish(NewStageStartedEvent(string(id), stage))
}

// StageCompleted publishes a stage completed event with metrics.
func (o *BusObserver) StageCompleted(id core.WorkflowID, step core.StepResult) {
	o.bus.Publish(NewStageCompletedEvent(string(id), step))
}

// WorkflowCompleted publishes a workflow completed event.
func (o *BusObserver) WorkflowCompleted(result *core.WorkflowResult) {
	o.bus.Publish(NewWorkflowCompletedEvent(result))
}

// WorkflowFailed publishes a workflow failed event.
func (o *BusObserver) WorkflowFailed(result *core.WorkflowResult, err error) {
	o.bus.Publish(NewWorkflowFailedEvent(result, err))
}
