package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	NoopHandler
	scanIDs []string
}

func (h *recordingHandler) OnScanComplete(e ScanCompleteEvent) {
	h.scanIDs = append(h.scanIDs, e.ScanID)
}

type panickingHandler struct {
	NoopHandler
}

func (panickingHandler) OnScanComplete(ScanCompleteEvent) {
	panic("boom")
}

func TestDispatchFansOutToAllHandlers(t *testing.T) {
	bus := New()
	a, b := &recordingHandler{}, &recordingHandler{}
	bus.Register(a)
	bus.Register(b)

	bus.PublishScanComplete(ScanCompleteEvent{ScanID: "scan-1"})

	require.Len(t, a.scanIDs, 1)
	assert.Equal(t, "scan-1", a.scanIDs[0])
	require.Len(t, b.scanIDs, 1)
	assert.Equal(t, "scan-1", b.scanIDs[0])
}

func TestHandlerPanicDoesNotAbortDispatch(t *testing.T) {
	bus := New()
	bus.Register(panickingHandler{})
	recorder := &recordingHandler{}
	bus.Register(recorder)

	bus.PublishScanComplete(ScanCompleteEvent{ScanID: "scan-2"})

	require.Len(t, recorder.scanIDs, 1, "expected the second handler to still run after the first panicked")
}

func TestNoopHandlerIgnoresEverything(t *testing.T) {
	bus := New()
	bus.Register(NoopHandler{})
	// Should not panic for any event kind.
	bus.PublishScanComplete(ScanCompleteEvent{})
	bus.PublishPatternApproved(PatternApprovedEvent{})
	bus.PublishConstraintViolated(ConstraintViolatedEvent{})
	bus.PublishMemoryCreated(MemoryCreatedEvent{})
}

func TestUnregisteredHandlerUnaffectedByLateRegistration(t *testing.T) {
	bus := New()
	recorder := &recordingHandler{}
	bus.PublishScanComplete(ScanCompleteEvent{ScanID: "before-register"})
	bus.Register(recorder)
	bus.PublishScanComplete(ScanCompleteEvent{ScanID: "after-register"})

	require.Len(t, recorder.scanIDs, 1, "expected only the post-registration event to be recorded")
	assert.Equal(t, "after-register", recorder.scanIDs[0])
}
