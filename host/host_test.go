package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benoitkugler/okchart/chart"
)

var scenarioRows = []chart.Row{
	{"2024-01-01", "A", "10", ""},
	{"2024-01-02", "A", "20", ""},
	{"2024-01-01", "B", "5", ""},
}

func TestDeliverReplaces(t *testing.T) {
	mount := new(Mount)
	coord := NewCoordinator(mount, chart.DefaultOptions())

	if err := coord.Deliver(chart.Payload{Rows: scenarioRows}); err != nil {
		t.Fatal(err)
	}
	scene, report := mount.Current()
	if scene == nil || len(scene.Curves()) != 2 || len(report.Groups) != 2 {
		t.Fatalf("unexpected mounted scene %v", report.Groups)
	}

	// the new scene fully replaces the previous one
	err := coord.Deliver(chart.Payload{Rows: []chart.Row{
		{"2024-01-01", "C", "1", ""},
		{"2024-01-03", "C", "2", ""},
	}})
	if err != nil {
		t.Fatal(err)
	}
	scene2, report2 := mount.Current()
	if scene2 == scene {
		t.Fatal("expected a new scene")
	}
	if len(scene2.Curves()) != 1 || len(scene2.Images()) != 1 || report2.Groups[0].EntityID != "C" {
		t.Errorf("unexpected scene content %v", report2.Groups)
	}
	if mount.Generation() != 4 {
		t.Errorf("expected 4 mount updates, got %d", mount.Generation())
	}
}

func TestDeliverFailureClears(t *testing.T) {
	mount := new(Mount)
	coord := NewCoordinator(mount, chart.DefaultOptions())
	if err := coord.Deliver(chart.Payload{Rows: scenarioRows}); err != nil {
		t.Fatal(err)
	}

	err := coord.Deliver(chart.Payload{})
	if !errors.Is(err, chart.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if scene, _ := mount.Current(); scene != nil {
		t.Error("expected an empty mount")
	}

	err = coord.Deliver(chart.Payload{Rows: []chart.Row{{"yesterday", "A", "1", ""}}})
	var dateErr *chart.DateError
	if !errors.As(err, &dateErr) {
		t.Errorf("expected a date error, got %v", err)
	}
}

func TestSubscriptionOrder(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
		active   int32
	)
	sub := Subscribe(func(p chart.Payload) {
		if atomic.AddInt32(&active, 1) != 1 {
			t.Error("overlapping deliveries")
		}
		time.Sleep(time.Millisecond)
		mu.Lock()
		received = append(received, p.Rows[0][1])
		mu.Unlock()
		atomic.AddInt32(&active, -1)
	}, 1)

	ctx := context.Background()
	for _, id := range []string{"A", "B", "C", "D"} {
		if err := sub.Publish(ctx, chart.Payload{Rows: []chart.Row{{"2024-01-01", id, "1", ""}}}); err != nil {
			t.Fatal(err)
		}
	}
	sub.Close()

	if len(received) != 4 || received[0] != "A" || received[3] != "D" {
		t.Errorf("unexpected deliveries %v", received)
	}
	if err := sub.Publish(ctx, chart.Payload{}); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	sub.Close() // no-op
}

func TestSubscriptionCoordinator(t *testing.T) {
	mount := new(Mount)
	coord := NewCoordinator(mount, chart.DefaultOptions())
	sub := Subscribe(func(p chart.Payload) { _ = coord.Deliver(p) }, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sub.Publish(ctx, chart.Payload{Rows: scenarioRows}); err != nil {
		t.Fatal(err)
	}
	sub.Close()

	if _, report := mount.Current(); len(report.Records) != 3 {
		t.Errorf("unexpected report %v", report)
	}
}

func TestMountConcurrentReads(t *testing.T) {
	mount := new(Mount)
	coord := NewCoordinator(mount, chart.DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				scene, report := mount.Current()
				if scene != nil && len(scene.Curves()) != len(report.Groups) {
					t.Error("inconsistent mount")
				}
			}
		}()
	}
	for j := 0; j < 5; j++ {
		_ = coord.Deliver(chart.Payload{Rows: scenarioRows})
	}
	wg.Wait()
}
