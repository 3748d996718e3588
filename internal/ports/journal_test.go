package ports

import (
	"context"
	"testing"
	"time"

	"github.com/quentinrf/ambient-backlight/internal/adapters/memory"
	"github.com/quentinrf/ambient-backlight/internal/domain"
)

func TestJournal_RecordsOfferedSamples(t *testing.T) {
	repo := memory.NewSampleRepository()
	j := NewJournal(repo, time.Hour, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	if !j.Offer(&domain.Sample{Timestamp: time.Now(), Level: 42}) {
		t.Fatal("expected offer to be accepted")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		latest, err := repo.GetLatestSample(context.Background())
		if err == nil {
			if latest.Level != 42 {
				t.Fatalf("expected level 42, got %d", latest.Level)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sample was not journaled")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("journal did not stop after cancel")
	}
}

func TestJournal_OfferNeverBlocks(t *testing.T) {
	j := NewJournal(memory.NewSampleRepository(), 0, 1)

	if !j.Offer(&domain.Sample{}) {
		t.Fatal("expected first offer to fit the buffer")
	}
	if j.Offer(&domain.Sample{}) {
		t.Fatal("expected second offer to be dropped")
	}
	if got := j.Dropped(); got != 1 {
		t.Errorf("expected 1 dropped sample, got %d", got)
	}
}
