package observe_test

import (
	"testing"

	"santacall/internal/platform/observe"
)

func TestSubscribersSeeEveryUpdate(t *testing.T) {
	t.Parallel()
	v := observe.NewValue(0)
	var seen []int
	cancel := v.Subscribe(func(n int) { seen = append(seen, n) })

	v.Set(1)
	v.Update(func(n *int) { *n += 10 })
	cancel()
	v.Set(99)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 11 {
		t.Fatalf("unexpected notifications: %v", seen)
	}
	if v.Get() != 99 {
		t.Fatalf("expected 99, got %d", v.Get())
	}
}

func TestSubscriberMayReadValue(t *testing.T) {
	t.Parallel()
	v := observe.NewValue("a")
	var got string
	v.Subscribe(func(string) { got = v.Get() })
	v.Set("b")
	if got != "b" {
		t.Fatalf("expected subscriber to read b, got %q", got)
	}
}
