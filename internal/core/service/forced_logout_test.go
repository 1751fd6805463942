package service

import "testing"

func TestForcedLogout(t *testing.T) {
	f := NewForcedLogout()
	var a, b int
	cancelA := f.Listen(func() { a++ })
	f.Listen(func() { b++ })

	f.Raise()
	cancelA()
	cancelA()
	f.Raise()

	if a != 1 || b != 2 {
		t.Fatalf("expected a=1 b=2, got a=%d b=%d", a, b)
	}
	if f.Listeners() != 1 {
		t.Fatalf("expected one listener left, got %d", f.Listeners())
	}
}

func TestForcedLogout_RaiseWithoutListeners(t *testing.T) {
	NewForcedLogout().Raise()
}

func TestForcedLogout_ListenerMayDeregisterItself(t *testing.T) {
	f := NewForcedLogout()
	calls := 0
	var cancel func()
	cancel = f.Listen(func() {
		calls++
		cancel()
	})
	f.Raise()
	f.Raise()
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}
