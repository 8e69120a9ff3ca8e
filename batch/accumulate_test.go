package batch

import (
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/status"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// seedSnapshot records the dispatch-time snapshot the accumulator folds
// partial results into.
func seedSnapshot(t *testing.T, store status.Store, invocationID string, requested int) {
	t.Helper()
	out := outcome.NewInProgress("check in progress").
		AddMetadata(common.MetaBatchesRequested, strconv.Itoa(requested)).
		AddMetadata(common.MetaBatchesResponded, "0")
	require.NoError(t, store.Save(invocationID, out))
}

func partialResult(checked, failed int) *outcome.Outcome {
	return outcome.NewInProgress("batch processed").
		AddMetadata(common.MetaCheckedCount, strconv.Itoa(checked)).
		AddMetadata(common.MetaCheckFailedCount, strconv.Itoa(failed))
}

func TestOnBatchResultNilPartialIsNoOp(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)

	require.NoError(t, acc.OnBatchResult(nil, "inv-1", testLog()))
	_, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	assert.False(t, found, "a nil partial must not create a snapshot")
}

func TestOnBatchResultUnknownInvocation(t *testing.T) {
	acc := NewAccumulator(status.NewMemoryStore(0))

	err := acc.OnBatchResult(partialResult(1, 0), "never-dispatched", testLog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown invocation")
}

func TestOnBatchResultAccumulatesUntilTerminal(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)
	seedSnapshot(t, store, "inv-1", 2)

	require.NoError(t, acc.OnBatchResult(partialResult(3, 0), "inv-1", testLog()))

	mid, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, outcome.StatusInProgress, mid.Status())
	meta := mid.Metadata()
	assert.Equal(t, "1", meta[common.MetaBatchesResponded])
	assert.Equal(t, "3", meta[common.MetaCheckedCount])

	require.NoError(t, acc.OnBatchResult(partialResult(2, 0), "inv-1", testLog()))

	final, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, outcome.StatusSuccess, final.Status())
	assert.Equal(t, MsgAllProcessed, final.Message())
	meta = final.Metadata()
	assert.Equal(t, "2", meta[common.MetaBatchesResponded])
	assert.Equal(t, "5", meta[common.MetaCheckedCount], "checked counts from both batches sum")
}

func TestOnBatchResultPartialSuccessWhenChecksFailed(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)
	seedSnapshot(t, store, "inv-1", 1)

	require.NoError(t, acc.OnBatchResult(partialResult(2, 1), "inv-1", testLog()))

	final, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, outcome.StatusPartialSuccess, final.Status())
	assert.Equal(t, MsgSomeFailed, final.Message())
}

func TestOnBatchResultIgnoresLateCallback(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)
	seedSnapshot(t, store, "inv-1", 1)

	require.NoError(t, acc.OnBatchResult(partialResult(2, 0), "inv-1", testLog()))
	terminalSnapshot, _, _ := store.GetLatest("inv-1")

	// A straggler after the terminal snapshot must change nothing.
	require.NoError(t, acc.OnBatchResult(partialResult(9, 9), "inv-1", testLog()))

	after, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, terminalSnapshot, after)
	assert.Equal(t, "2", after.Metadata()[common.MetaCheckedCount])
}

func TestReportSavesWhenNothingAccumulatedYet(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)

	out := outcome.NewSuccess("done")
	require.NoError(t, acc.Report("inv-1", out, testLog()))

	got, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, out, got)
}

func TestReportDropsStaleOutcomeAfterCallbackProgressed(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)
	seedSnapshot(t, store, "inv-1", 2)

	require.NoError(t, acc.OnBatchResult(partialResult(5, 0), "inv-1", testLog()))
	folded, _, _ := store.GetLatest("inv-1")

	// The dispatch-time outcome still carries a responded count of 0; a
	// report of it must not roll back the folded total.
	stale := outcome.NewInProgress("dispatched").
		AddMetadata(common.MetaBatchesRequested, "2").
		AddMetadata(common.MetaBatchesResponded, "0")
	require.NoError(t, acc.Report("inv-1", stale, testLog()))

	after, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, folded, after)
	assert.Equal(t, "1", after.Metadata()[common.MetaBatchesResponded])
}

func TestReportNilOutcomeIsNoOp(t *testing.T) {
	store := status.NewMemoryStore(0)
	acc := NewAccumulator(store)

	require.NoError(t, acc.Report("inv-1", nil, testLog()))
	_, found, err := store.GetLatest("inv-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCombineCount(t *testing.T) {
	tests := []struct {
		name           string
		oldVal, newVal string
		oldOK, newOK   bool
		want           string
	}{
		{"both numeric sum", "12", "12", true, true, "24"},
		{"only new numeric", "", "5", false, true, "5"},
		{"only old numeric", "6", "", true, false, "6"},
		{"both absent", "", "", false, false, "0"},
		{"non-numeric old yields to numeric new", "ABC", "13", true, true, "13"},
		{"numeric old survives non-numeric new", "7", "XYZ", true, true, "7"},
		{"both non-numeric keeps newest", "ABC", "XYZ", true, true, "XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, combineCount(tt.oldVal, tt.oldOK, tt.newVal, tt.newOK))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, terminal(map[string]string{}))
	assert.False(t, terminal(map[string]string{
		common.MetaBatchesRequested: "3",
		common.MetaBatchesResponded: "2",
	}))
	assert.True(t, terminal(map[string]string{
		common.MetaBatchesRequested: "3",
		common.MetaBatchesResponded: "3",
	}))
	assert.False(t, terminal(map[string]string{
		common.MetaBatchesRequested: "0",
		common.MetaBatchesResponded: "0",
	}), "an invocation with no batches requested never reads as terminal")
}
