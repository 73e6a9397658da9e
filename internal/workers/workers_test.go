// SPDX-License-Identifier: Apache-2.0

package workers

import "testing"

// countingWorker records how many times Run was called.
type countingWorker struct {
	runs int
}

func (w *countingWorker) Run() {
	w.runs++
}

// recordingWorker appends its id to a shared slice on Run.
type recordingWorker struct {
	id    int
	order *[]int
}

func (w *recordingWorker) Run() {
	*w.order = append(*w.order, w.id)
}

func TestWorkers_RunStartsEveryWorker(t *testing.T) {
	ws := []*countingWorker{{}, {}, {}}

	NewWorkers(ws[0], ws[1], ws[2]).Run()

	for i, w := range ws {
		if w.runs != 1 {
			t.Errorf("worker[%d]: runs = %d, want 1", i, w.runs)
		}
	}
}

func TestWorkers_RunPreservesOrder(t *testing.T) {
	var order []int
	NewWorkers(
		&recordingWorker{id: 1, order: &order},
		&recordingWorker{id: 2, order: &order},
		&recordingWorker{id: 3, order: &order},
	).Run()

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("started %d workers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestWorkers_RunWithNoWorkers(t *testing.T) {
	// Must not panic with an empty or nil worker list.
	NewWorkers().Run()
	(&Workers{}).Run()
}

func TestWorkers_RunIsRepeatable(t *testing.T) {
	w := &countingWorker{}
	ws := NewWorkers(w)

	ws.Run()
	ws.Run()

	if w.runs != 2 {
		t.Errorf("runs = %d after two Run calls, want 2", w.runs)
	}
}
