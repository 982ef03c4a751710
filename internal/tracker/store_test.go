package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"scribe/internal/testsupport"
	"scribe/internal/tracker"
)

func TestUpsertPendingIdempotent(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	first, err := store.UpsertPending(ctx, "/in/a.mp3", "/out/a", "model-a")
	if err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}
	if first.Status != tracker.StatusPending {
		t.Fatalf("expected pending, got %s", first.Status)
	}

	second, err := store.UpsertPending(ctx, "/in/a.mp3", "/out/other", "model-b")
	if err != nil {
		t.Fatalf("UpsertPending again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same record, got IDs %d and %d", first.ID, second.ID)
	}
	if second.OutputPath != "/out/a" {
		t.Fatalf("existing record overwritten: output path %q", second.OutputPath)
	}
	if second.Model != "model-a" {
		t.Fatalf("existing record overwritten: model %q", second.Model)
	}
}

func TestStorePathMatchesDatabasePath(t *testing.T) {
	store, outputRoot := testsupport.MustOpenStore(t)

	if store.Path() != tracker.DatabasePath(outputRoot) {
		t.Fatalf("store path %q, want %q", store.Path(), tracker.DatabasePath(outputRoot))
	}
}

func TestBeginProcessingClaimsOnce(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.UpsertPending(ctx, "/in/a.mp3", "/out/a", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}

	claimed, err := store.BeginProcessing(ctx, "/in/a.mp3", "model", false)
	if err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = store.BeginProcessing(ctx, "/in/a.mp3", "model", false)
	if err != nil {
		t.Fatalf("BeginProcessing second: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to lose")
	}

	record, err := store.Get(ctx, "/in/a.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != tracker.StatusProcessing {
		t.Fatalf("expected processing, got %s", record.Status)
	}
}

func TestBeginProcessingConcurrentSingleWinner(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.UpsertPending(ctx, "/in/race.mp3", "/out/race", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}

	const contenders = 8
	var wg sync.WaitGroup
	wins := make(chan bool, contenders)
	errs := make(chan error, contenders)
	wg.Add(contenders)
	for i := 0; i < contenders; i++ {
		go func() {
			defer wg.Done()
			claimed, err := store.BeginProcessing(ctx, "/in/race.mp3", "model", false)
			if err != nil {
				errs <- err
				return
			}
			wins <- claimed
		}()
	}
	wg.Wait()
	close(wins)
	close(errs)

	for err := range errs {
		t.Fatalf("BeginProcessing: %v", err)
	}
	winners := 0
	for claimed := range wins {
		if claimed {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestBeginProcessingUnknownPath(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)

	claimed, err := store.BeginProcessing(context.Background(), "/in/missing.mp3", "", false)
	if err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if claimed {
		t.Fatal("claim on unknown path should lose, not error")
	}
}

func TestCompleteRequiresProcessing(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.UpsertPending(ctx, "/in/a.mp3", "/out/a", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}

	err := store.Complete(ctx, "/in/a.mp3", 10, 2, "model")
	if !errors.Is(err, tracker.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := store.BeginProcessing(ctx, "/in/a.mp3", "model", false); err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if err := store.Complete(ctx, "/in/a.mp3", 10, 2, "model"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	record, err := store.Get(ctx, "/in/a.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != tracker.StatusCompleted {
		t.Fatalf("expected completed, got %s", record.Status)
	}
	if record.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if record.Error != "" {
		t.Fatalf("completed record carries error %q", record.Error)
	}
	if record.DurationSeconds != 10 || record.ProcessingSeconds != 2 {
		t.Fatalf("timings not recorded: %v / %v", record.DurationSeconds, record.ProcessingSeconds)
	}
}

func TestFailRecordsErrorMessage(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	if _, err := store.UpsertPending(ctx, "/in/a.mp3", "/out/a", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}

	if err := store.Fail(ctx, "/in/a.mp3", "boom"); !errors.Is(err, tracker.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on pending record, got %v", err)
	}

	if _, err := store.BeginProcessing(ctx, "/in/a.mp3", "", false); err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if err := store.Fail(ctx, "/in/a.mp3", "decode error"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	record, err := store.Get(ctx, "/in/a.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != tracker.StatusFailed {
		t.Fatalf("expected failed, got %s", record.Status)
	}
	if record.Error != "decode error" {
		t.Fatalf("expected error text, got %q", record.Error)
	}
	if record.CompletedAt == nil {
		t.Fatal("failed record should carry a completion timestamp")
	}
}

func TestRetryClearsErrorAndTimestamp(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	mustFail(t, store, "/in/a.mp3")

	reset, err := store.ResetFailed(ctx)
	if err != nil {
		t.Fatalf("ResetFailed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}

	record, err := store.Get(ctx, "/in/a.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != tracker.StatusPending {
		t.Fatalf("expected pending, got %s", record.Status)
	}
	if record.Error != "" {
		t.Fatalf("error text survived reset: %q", record.Error)
	}
	if record.CompletedAt != nil {
		t.Fatal("completed_at survived reset")
	}
}

func TestOverwriteReclaimsCompleted(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	mustComplete(t, store, "/in/a.mp3")

	claimed, err := store.BeginProcessing(ctx, "/in/a.mp3", "", false)
	if err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if claimed {
		t.Fatal("completed record claimed without overwrite")
	}

	claimed, err = store.BeginProcessing(ctx, "/in/a.mp3", "new-model", true)
	if err != nil {
		t.Fatalf("BeginProcessing with overwrite: %v", err)
	}
	if !claimed {
		t.Fatal("expected overwrite claim to win")
	}

	record, err := store.Get(ctx, "/in/a.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != tracker.StatusProcessing {
		t.Fatalf("expected processing, got %s", record.Status)
	}
	if record.CompletedAt != nil {
		t.Fatal("completed_at not cleared on re-entry")
	}
	if record.Model != "new-model" {
		t.Fatalf("model not updated, got %q", record.Model)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	for _, path := range []string{"/in/a.mp3", "/in/b.mp3"} {
		if _, err := store.UpsertPending(ctx, path, "/out/x", ""); err != nil {
			t.Fatalf("UpsertPending: %v", err)
		}
		if _, err := store.BeginProcessing(ctx, path, "", false); err != nil {
			t.Fatalf("BeginProcessing: %v", err)
		}
	}
	mustComplete(t, store, "/in/c.mp3")

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if reset != 2 {
		t.Fatalf("expected 2 reclaimed, got %d", reset)
	}

	record, err := store.Get(ctx, "/in/c.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != tracker.StatusCompleted {
		t.Fatalf("completed record disturbed by reset: %s", record.Status)
	}
}

func TestListFilterAndSort(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	mustComplete(t, store, "/in/b.mp3")
	mustFail(t, store, "/in/a.mp3")
	if _, err := store.UpsertPending(ctx, "/in/c.mp3", "/out/c", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}

	all, err := store.List(ctx, "", tracker.SortByName)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].InputPath != "/in/a.mp3" || all[2].InputPath != "/in/c.mp3" {
		t.Fatalf("unexpected ordering: %s, %s, %s", all[0].InputPath, all[1].InputPath, all[2].InputPath)
	}

	failed, err := store.List(ctx, tracker.StatusFailed, tracker.SortByName)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].InputPath != "/in/a.mp3" {
		t.Fatalf("unexpected filter result: %+v", failed)
	}
}

func TestStats(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)
	ctx := context.Background()

	mustComplete(t, store, "/in/a.mp3")
	mustComplete(t, store, "/in/b.mp3")
	mustFail(t, store, "/in/c.mp3")
	if _, err := store.UpsertPending(ctx, "/in/d.mp3", "/out/d", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}

	summary, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if summary.Total != 4 {
		t.Fatalf("expected 4 total, got %d", summary.Total)
	}
	if summary.Completed != 2 || summary.Failed != 1 || summary.Pending != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.TotalDuration != 20 {
		t.Fatalf("expected 20s total duration, got %v", summary.TotalDuration)
	}
	if rtf := summary.AverageRTF(); rtf != 0.2 {
		t.Fatalf("expected average RTF 0.2, got %v", rtf)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store, _ := testsupport.MustOpenStore(t)

	record, err := store.Get(context.Background(), "/in/nope.mp3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got %+v", record)
	}
}

func mustComplete(t *testing.T, store *tracker.Store, path string) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.UpsertPending(ctx, path, "/out/x", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}
	if _, err := store.BeginProcessing(ctx, path, "model", false); err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if err := store.Complete(ctx, path, 10, 2, "model"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func mustFail(t *testing.T, store *tracker.Store, path string) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.UpsertPending(ctx, path, "/out/x", ""); err != nil {
		t.Fatalf("UpsertPending: %v", err)
	}
	if _, err := store.BeginProcessing(ctx, path, "", false); err != nil {
		t.Fatalf("BeginProcessing: %v", err)
	}
	if err := store.Fail(ctx, path, "boom"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
}
