package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"
)

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func TestSlot_EmptyBeforeFirstPublish(t *testing.T) {
	s := New[[]byte](cloneBytes, nil)

	if _, ok := s.Read(); ok {
		t.Fatal("Expected empty slot before first publish")
	}
	select {
	case <-s.Ready():
		t.Fatal("Expected Ready to stay open before first publish")
	default:
	}
}

func TestSlot_LatestWins(t *testing.T) {
	var released []string
	s := New[string](nil, func(v string) { released = append(released, v) })

	s.Publish("a")
	s.Publish("b")
	s.Publish("c")

	got, ok := s.Read()
	if !ok || got != "c" {
		t.Fatalf("Expected latest value c, got %q (ok=%v)", got, ok)
	}
	if len(released) != 2 || released[0] != "a" || released[1] != "b" {
		t.Errorf("Expected replaced values to be released in order, got %v", released)
	}
	if s.Seq() != 3 {
		t.Errorf("Expected seq 3, got %d", s.Seq())
	}
}

func TestSlot_ReadReturnsCopy(t *testing.T) {
	s := New[[]byte](cloneBytes, nil)
	s.Publish([]byte{1, 2, 3})

	first, _ := s.Read()
	first[0] = 99

	second, _ := s.Read()
	if second[0] != 1 {
		t.Errorf("Expected reader mutation not to leak into the slot, got %v", second)
	}
}

func TestSlot_WaitUnblocksOnPublish(t *testing.T) {
	s := New[int](nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.Wait(context.Background())
	}()

	s.Publish(1)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Expected nil error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after publish")
	}
}

func TestSlot_WaitHonoursContext(t *testing.T) {
	s := New[int](nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSlot_CloseReleasesValue(t *testing.T) {
	released := 0
	s := New[int](nil, func(int) { released++ })
	s.Publish(7)
	s.Close()

	if released != 1 {
		t.Errorf("Expected one release on close, got %d", released)
	}
	if _, ok := s.Read(); ok {
		t.Error("Expected slot to read empty after close")
	}
}

func TestSlot_ConcurrentReadersSeeWholeValues(t *testing.T) {
	s := New[[]byte](cloneBytes, nil)
	s.Publish([]byte{0, 0, 0, 0})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := byte(1); i < 200; i++ {
			s.Publish([]byte{i, i, i, i})
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				v, ok := s.Read()
				if !ok {
					t.Error("Expected value after first publish")
					return
				}
				for _, b := range v {
					if b != v[0] {
						t.Errorf("Observed partial frame %v", v)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
}
