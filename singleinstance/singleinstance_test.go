package singleinstance

import "testing"

func TestAcquireIsExclusive(t *testing.T) {
	first, err := Acquire(0)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer first.Close()

	port := first.Port()
	if port == 0 {
		t.Fatalf("guard should report its bound port")
	}

	if _, err := Acquire(port); err == nil {
		t.Fatalf("second acquire on port %d should fail while guard is held", port)
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	first, err := Acquire(0)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	port := first.Port()
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	second, err := Acquire(port)
	if err != nil {
		t.Fatalf("acquire after release should succeed: %v", err)
	}
	second.Close()
}
