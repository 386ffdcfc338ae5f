package transform

import (
	"context"
	"testing"
)

func TestTransformAll(t *testing.T) {
	p := mustPipeline(t,
		mustPath(t, "card", "", mustFpe(t, SecureFpeConfig{})),
		Passthrough(),
	)

	records := []Record{
		{"card": "4123567891234567"},
		{"card": "1111222233334444", "note": "ok"},
		{"card": "9999000011112222"},
	}

	out, err := p.TransformAll(context.Background(), records)
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	if len(out) != len(records) {
		t.Fatalf("got %d results for %d records", len(out), len(records))
	}
	if out[0]["card"] != "5931468769662449" {
		t.Errorf("out[0] = %v", out[0]["card"])
	}
	if out[1]["note"] != "ok" {
		t.Errorf("out[1] lost passthrough field: %v", out[1])
	}

	back, err := p.RestoreAll(context.Background(), out)
	if err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}
	for i := range records {
		if back[i]["card"] != records[i]["card"] {
			t.Errorf("record %d: restored %v, want %v", i, back[i]["card"], records[i]["card"])
		}
	}
}

func TestTransformAllCollectsPerRecordErrors(t *testing.T) {
	p := mustPipeline(t,
		mustPath(t, "card", "", mustFpe(t, SecureFpeConfig{})),
		Passthrough(),
	)

	records := []Record{
		{"card": "4123567891234567"},
		nil, // no data: fails, but must not abort the batch
		{"card": "1111222233334444"},
	}

	out, err := p.TransformAll(context.Background(), records)
	if err == nil {
		t.Fatal("want a joined error for the bad record")
	}
	if out[0] == nil || out[2] == nil {
		t.Fatal("good records not processed")
	}
	if out[1] != nil {
		t.Fatalf("failed record produced output: %v", out[1])
	}
}

func TestTransformAllCancelled(t *testing.T) {
	p := mustPipeline(t, Passthrough())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := make([]Record, 64)
	for i := range records {
		records[i] = Record{"x": i}
	}

	_, err := p.TransformAll(ctx, records)
	if err == nil {
		t.Fatal("want an error after cancellation")
	}
}
