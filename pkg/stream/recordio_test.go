package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"
)

// upperDecoder decodes a record's raw bytes into its upper-cased
// string, so tests can tell a decoded value apart from its raw wire
// bytes.
var upperDecoder = DecoderFunc(func(data []byte) (interface{}, error) {
	return bytes.ToUpper(data), nil
})

func writeRecords(t *testing.T, records ...string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range records {
		if err := w.WriteRecord([]byte(rec)); err != nil {
			t.Fatalf("WriteRecord(%q) returned error: %v", rec, err)
		}
	}
	return &buf
}

func TestReadDecodesEachRecord(t *testing.T) {
	buf := writeRecords(t, "subscribed", "heartbeat", "offers")
	rd := NewReader(context.Background(), buf, upperDecoder)
	defer rd.Close()

	want := []string{"SUBSCRIBED", "HEARTBEAT", "OFFERS"}
	for i, w := range want {
		rec, err := rd.Read().Wait(context.Background())
		if err != nil {
			t.Fatalf("Read[%d] returned error: %v", i, err)
		}
		if rec.Err != nil {
			t.Fatalf("Read[%d] record error: %v", i, rec.Err)
		}
		got := string(rec.Value.([]byte))
		if got != w {
			t.Errorf("Read[%d] = %q, want %q", i, got, w)
		}
	}

	rec, err := rd.Read().Wait(context.Background())
	if err != nil {
		t.Fatalf("final Read returned error: %v", err)
	}
	if !rec.EOF {
		t.Errorf("final Read = %+v, want EOF", rec)
	}
}

func TestReadInvalidLengthPrefix(t *testing.T) {
	rd := NewReader(context.Background(), bytes.NewBufferString("notanumber\nabc"), upperDecoder)
	defer rd.Close()

	rec, err := rd.Read().Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if rec.Err == nil {
		t.Error("expected a record error for an invalid length prefix")
	}
}

func TestReadDecoderError(t *testing.T) {
	failDecoder := DecoderFunc(func(data []byte) (interface{}, error) {
		return nil, fmt.Errorf("boom")
	})
	buf := writeRecords(t, "anything")
	rd := NewReader(context.Background(), buf, failDecoder)
	defer rd.Close()

	rec, err := rd.Read().Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if rec.Err == nil {
		t.Error("expected a record error from a failing decoder")
	}
}

// TestDiscardedReadDoesNotLoseARecord mirrors the bounded queue's own
// discard-then-put guarantee: a Read the caller gives up on waiting
// for, before any record has arrived for it, must not swallow the
// record a later Put delivers — that record lands on the next Read
// instead. An io.Pipe holds the feed goroutine blocked on its first
// byte until the test writes one, so the discard is guaranteed to
// land while the read is still parked, not racing a decode.
func TestDiscardedReadDoesNotLoseARecord(t *testing.T) {
	r, w := io.Pipe()
	rd := NewReader(context.Background(), r, upperDecoder)
	defer rd.Close()

	first := rd.Read()
	first.Discard()
	second := rd.Read()

	go func() {
		rw := NewWriter(w)
		_ = rw.WriteRecord([]byte("one"))
		w.Close()
	}()

	rec, err := second.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if rec.Err != nil || rec.EOF {
		t.Fatalf("second Read = %+v, want a decoded value", rec)
	}
	if got := string(rec.Value.([]byte)); got != "ONE" {
		t.Errorf("second Read value = %q, want ONE", got)
	}
}

func TestReadRespectsWaitDeadline(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	rd := NewReader(context.Background(), r, upperDecoder)
	defer rd.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := rd.Read().Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Wait returned err=%v, want DeadlineExceeded", err)
	}
}

func TestWriteRecordEmptyBody(t *testing.T) {
	buf := writeRecords(t, "")
	rd := NewReader(context.Background(), buf, upperDecoder)
	defer rd.Close()

	rec, err := rd.Read().Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if rec.Err != nil {
		t.Fatalf("record error: %v", rec.Err)
	}
	if got := string(rec.Value.([]byte)); got != "" {
		t.Errorf("value = %q, want empty", got)
	}
}
