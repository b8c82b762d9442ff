package eventbus

import (
	"context"
	"testing"
)

type ping struct{ N int }
type pong struct{ N int }

func TestDispatchByType(t *testing.T) {
	Use(New())
	defer Use(nil)

	var pings, pongs []int
	Subscribe(func(ctx context.Context, e ping) { pings = append(pings, e.N) })
	Subscribe(func(ctx context.Context, e pong) { pongs = append(pongs, e.N) })

	ctx := context.Background()
	Publish(ctx, ping{1})
	Publish(ctx, ping{2})
	Publish(ctx, pong{3})

	if len(pings) != 2 || pings[0] != 1 || pings[1] != 2 {
		t.Fatalf("pings = %v", pings)
	}
	if len(pongs) != 1 || pongs[0] != 3 {
		t.Fatalf("pongs = %v", pongs)
	}
}

func TestNoBusIsNoOp(t *testing.T) {
	Use(nil)
	Subscribe(func(ctx context.Context, e ping) { t.Fatal("handler registered without a bus") })
	Publish(context.Background(), ping{1})
}

func TestSubscribeDuringDispatch(t *testing.T) {
	Use(New())
	defer Use(nil)

	calls := 0
	Subscribe(func(ctx context.Context, e ping) {
		calls++
		Subscribe(func(ctx context.Context, e ping) { calls++ })
	})

	ctx := context.Background()
	Publish(ctx, ping{1})
	if calls != 1 {
		t.Fatalf("calls after first publish = %d, want 1", calls)
	}
	Publish(ctx, ping{2})
	if calls != 3 {
		t.Fatalf("calls after second publish = %d, want 3", calls)
	}
}

func TestMultipleHandlersSameType(t *testing.T) {
	Use(New())
	defer Use(nil)

	calls := 0
	Subscribe(func(ctx context.Context, e ping) { calls++ })
	Subscribe(func(ctx context.Context, e ping) { calls++ })
	Publish(context.Background(), ping{1})
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}
