package kernel

import (
	"runtime"
	"sync"
	"testing"
)

func TestMailboxTryRecvEmpty(t *testing.T) {
	var mb Mailbox[int]

	_, ok := mb.TryRecv()
	if ok {
		t.Fatalf("TryRecv() ok = true, want false")
	}
}

func TestMailboxTrySendFull(t *testing.T) {
	var mb Mailbox[int]

	for i := 0; i < MailboxSlots; i++ {
		if ok := mb.TrySend(i); !ok {
			t.Fatalf("TrySend() ok = false at slot %d, want true", i)
		}
	}
	if ok := mb.TrySend(99); ok {
		t.Fatalf("TrySend() ok = true when full, want false")
	}
	if got := mb.Len(); got != MailboxSlots {
		t.Fatalf("Len() = %d, want %d", got, MailboxSlots)
	}

	for i := 0; i < MailboxSlots; i++ {
		v, ok := mb.TryRecv()
		if !ok {
			t.Fatalf("TryRecv() ok = false at slot %d, want true", i)
		}
		if v != i {
			t.Fatalf("TryRecv() = %d, want %d (FIFO)", v, i)
		}
	}
	if got := mb.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
}

func TestMailboxWrapsAround(t *testing.T) {
	var mb Mailbox[string]
	for round := 0; round < 3*MailboxSlots; round++ {
		if !mb.TrySend("x") {
			t.Fatalf("TrySend() failed at round %d", round)
		}
		if v, ok := mb.TryRecv(); !ok || v != "x" {
			t.Fatalf("TryRecv() = (%q, %v) at round %d", v, ok, round)
		}
	}
}

func TestMailboxConcurrentProducers(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 10_000
		total     = producers * perProd
	)

	var mb Mailbox[uint32]

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for producerID := 0; producerID < producers; producerID++ {
		go func(producerID int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				mb.Send(uint32(producerID*perProd + i))
			}
		}(producerID)
	}
	close(start)

	seen := make([]bool, total)
	for i := 0; i < total; i++ {
		id := mb.Recv()
		if int(id) >= total {
			t.Fatalf("Recv() id = %d, want < %d", id, total)
		}
		if seen[id] {
			t.Fatalf("Recv() duplicate id %d", id)
		}
		seen[id] = true
	}

	wg.Wait()
}
