package events

import "testing"

type testEventA struct{ N int }
type testEventB struct{ S string }

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	Subscribe(bus, func(e testEventA) { order = append(order, "first") })
	Subscribe(bus, func(e testEventA) { order = append(order, "second") })

	Publish(bus, testEventA{N: 1})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handlers ran out of order: %v", order)
	}
}

func TestPublishIsTypeScoped(t *testing.T) {
	bus := NewBus()

	var gotA, gotB int
	Subscribe(bus, func(e testEventA) { gotA++ })
	Subscribe(bus, func(e testEventB) { gotB++ })

	Publish(bus, testEventA{N: 1})
	Publish(bus, testEventA{N: 2})
	Publish(bus, testEventB{S: "x"})

	if gotA != 2 {
		t.Errorf("A handler ran %d times, want 2", gotA)
	}
	if gotB != 1 {
		t.Errorf("B handler ran %d times, want 1", gotB)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	Publish(bus, testEventA{N: 1}) // must not panic
}
