package events

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeState struct {
	executions uint64
}

func (f fakeState) Executions() uint64            { return f.executions }
func (f fakeState) ExecutionsOverSeconds() uint64 { return 0 }
