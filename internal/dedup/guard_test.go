package dedup

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGuardSuppressesImmediateRepeat(t *testing.T) {
	g := NewGuard()

	if !g.Admit("xdai", "0xh1") {
		t.Fatalf("first delivery should be admitted")
	}
	if g.Admit("xdai", "0xh1") {
		t.Fatalf("immediate repeat should be suppressed")
	}
}

func TestGuardOnlyRemembersPreviousHash(t *testing.T) {
	g := NewGuard()

	for i, tx := range []string{"0xh1", "0xh2", "0xh1"} {
		if !g.Admit("xdai", tx) {
			t.Fatalf("delivery %d (%s) should be admitted", i, tx)
		}
	}
}

func TestGuardSlotsAreIndependent(t *testing.T) {
	g := NewGuard()

	g.Record("xdai", "0xh1")
	if g.ShouldSuppress("mainnet", "0xh1") {
		t.Fatalf("other subscription should not be suppressed")
	}
	if !g.ShouldSuppress("xdai", "0xh1") {
		t.Fatalf("same subscription should be suppressed")
	}
}

func TestGuardEmptyHashNeverSuppressed(t *testing.T) {
	g := NewGuard()

	if g.ShouldSuppress("xdai", "") {
		t.Fatalf("empty slot should not suppress empty hash")
	}
	g.Record("xdai", "")
	if !g.Admit("xdai", "") {
		t.Fatalf("empty hash should be admitted")
	}
}

func TestGuardConcurrentAdmitSameHash(t *testing.T) {
	g := NewGuard()

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Admit("mainnet", "0xsame") {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 1 {
		t.Fatalf("expected exactly one admission, got %d", admitted)
	}
}

func TestGuardConcurrentSubscriptions(t *testing.T) {
	g := NewGuard()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := fmt.Sprintf("sub-%d", i)
			if !g.Admit(sub, "0xh") {
				t.Errorf("%s: first admit rejected", sub)
			}
		}(i)
	}
	wg.Wait()
}
