package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/mkarlen/starhelm/internal/application/dispatch"
)

type queueContext struct {
	queue      *dispatch.EventQueue
	lastPushed bool
	extracted  []string
}

func (qc *queueContext) reset() {
	qc.queue = dispatch.NewEventQueue()
	qc.lastPushed = false
	qc.extracted = nil
}

func (qc *queueContext) anEmptyEventQueue() error {
	qc.reset()
	return nil
}

func (qc *queueContext) shipIsEnqueuedAt(shipSymbol, priority string) error {
	qc.lastPushed = qc.queue.Push(shipSymbol, priority)
	return nil
}

func (qc *queueContext) thePushShouldBeRejected() error {
	if qc.lastPushed {
		return fmt.Errorf("expected push to be rejected, but it was accepted")
	}
	return nil
}

func (qc *queueContext) iExtractAllShips() error {
	for {
		symbol, ok := qc.queue.ExtractMin()
		if !ok {
			return nil
		}
		qc.extracted = append(qc.extracted, symbol)
	}
}

func (qc *queueContext) theExtractionOrderShouldBe(order string) error {
	expected := strings.Split(order, ", ")
	if len(qc.extracted) != len(expected) {
		return fmt.Errorf("expected %d ships, extracted %d: %v", len(expected), len(qc.extracted), qc.extracted)
	}
	for i, symbol := range expected {
		if qc.extracted[i] != symbol {
			return fmt.Errorf("position %d: expected %s, got %s (full order %v)",
				i, symbol, qc.extracted[i], qc.extracted)
		}
	}
	return nil
}

func (qc *queueContext) theQueueSizeShouldBe(size int) error {
	if qc.queue.Size() != size {
		return fmt.Errorf("expected queue size %d, got %d", size, qc.queue.Size())
	}
	return nil
}

// InitializeQueueScenario registers the event queue step definitions
func InitializeQueueScenario(sc *godog.ScenarioContext) {
	qc := &queueContext{}
	qc.reset()

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		qc.reset()
		return ctx, nil
	})

	sc.Step(`^an empty event queue$`, qc.anEmptyEventQueue)
	sc.Step(`^ship "([^"]*)" is enqueued at "([^"]*)"$`, qc.shipIsEnqueuedAt)
	sc.Step(`^the push should be rejected$`, qc.thePushShouldBeRejected)
	sc.Step(`^I extract all ships$`, qc.iExtractAllShips)
	sc.Step(`^the extraction order should be "([^"]*)"$`, qc.theExtractionOrderShouldBe)
	sc.Step(`^the queue size should be (\d+)$`, qc.theQueueSizeShouldBe)
}
