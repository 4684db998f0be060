package stream

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestBusWriter(t *testing.T) {
	b := NewBus([]string{"broker-1:9092", "broker-2:9092"})
	w := b.Writer("meter")
	defer w.Close()

	if got := w.Topic; got != "meter" {
		t.Errorf("wrong topic: got %s", got)
	}
	if got := w.Addr.Network(); got != "tcp" {
		t.Errorf("wrong network: got %s", got)
	}
	got := w.Addr.String()
	for _, broker := range []string{"broker-1:9092", "broker-2:9092"} {
		if !strings.Contains(got, broker) {
			t.Errorf("address %s is missing broker %s", got, broker)
		}
	}
	if w.RequiredAcks != kafka.RequireOne {
		t.Errorf("wrong acks: got %v", w.RequiredAcks)
	}
	if w.Async {
		t.Errorf("writer should be synchronous")
	}
}

func TestBusReader(t *testing.T) {
	b := NewBus([]string{"broker-1:9092"})
	r := b.Reader("meter", "pvsim-pv")
	defer r.Close()

	cfg := r.Config()
	if cfg.Topic != "meter" {
		t.Errorf("wrong topic: got %s", cfg.Topic)
	}
	if cfg.GroupID != "pvsim-pv" {
		t.Errorf("wrong group: got %s", cfg.GroupID)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "broker-1:9092" {
		t.Errorf("wrong brokers: got %v", cfg.Brokers)
	}
	if cfg.MinBytes != 1 {
		t.Errorf("a single reading should satisfy a fetch, got min bytes %d", cfg.MinBytes)
	}
}

func TestReadingJSON(t *testing.T) {
	r := Reading{
		Time:   time.Date(2020, time.June, 1, 12, 0, 0, 0, time.UTC),
		ValueW: 1234.5,
	}
	body, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"time":"2020-06-01T12:00:00Z","value_w":1234.5}`
	if string(body) != want {
		t.Errorf("wrong body:\ngot  %s\nwant %s", body, want)
	}

	var back Reading
	if err := json.Unmarshal(body, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Time.Equal(r.Time) || back.ValueW != r.ValueW {
		t.Errorf("round trip changed the reading: got %+v", back)
	}
}
