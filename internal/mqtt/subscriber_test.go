package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/LukaChassaing/meteo-dashboard/internal/config"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
	"github.com/LukaChassaing/meteo-dashboard/internal/observability"
)

func newTestSubscriber(t *testing.T) (*Subscriber, *observability.Metrics) {
	t.Helper()
	cfg := config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1,
		MQTTClientID: "test",
		MQTTTopic:    "meteo/+/measurements",
	}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewSubscriber(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics), metrics
}

func TestDecodeReading(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		payload  string
		wantLoc  string
		wantTemp float64
		wantErr  bool
	}{
		{
			name:     "location in payload",
			topic:    "meteo/ignored/measurements",
			payload:  `{"temperature":21.4,"humidity":48,"location":"interior","timestamp":"2026-10-18T10:00:00Z"}`,
			wantLoc:  "interior",
			wantTemp: 21.4,
		},
		{
			name:     "location from topic",
			topic:    "meteo/exterior/measurements",
			payload:  `{"temperature":8.2,"humidity":90,"timestamp":"2026-10-18T10:00:00Z"}`,
			wantLoc:  "exterior",
			wantTemp: 8.2,
		},
		{
			name:    "short topic leaves location empty",
			topic:   "meteo",
			payload: `{"temperature":8.2,"humidity":90,"timestamp":"2026-10-18T10:00:00Z"}`,
		},
		{
			name:    "not json",
			topic:   "meteo/interior/measurements",
			payload: `21.4;48`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := decodeReading(tt.topic, []byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeReading: %v", err)
			}
			if r.Location != tt.wantLoc || r.Temperature != tt.wantTemp {
				t.Errorf("got %+v, want location %q temperature %v", r, tt.wantLoc, tt.wantTemp)
			}
		})
	}
}

func TestHandleMessage_Outcomes(t *testing.T) {
	s, metrics := newTestSubscriber(t)

	var stored []types.Reading
	failNext := false
	s.SetReadingHandler(func(ctx context.Context, r types.Reading) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("handler context should carry a deadline")
		}
		if failNext {
			return errors.New("disk full")
		}
		stored = append(stored, r)
		return nil
	})

	s.handleMessage("meteo/interior/measurements", []byte(`{"temperature":21,"humidity":45,"timestamp":"2026-10-18T10:00:00Z"}`))
	s.handleMessage("meteo/interior/measurements", []byte(`{"temperature":21,"humidity":145,"timestamp":"2026-10-18T10:05:00Z"}`))
	s.handleMessage("meteo/interior/measurements", []byte(`garbage`))
	failNext = true
	s.handleMessage("meteo/interior/measurements", []byte(`{"temperature":21,"humidity":45,"timestamp":"2026-10-18T10:10:00Z"}`))

	if len(stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(stored))
	}
	want := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	if stored[0].Location != "interior" || !stored[0].Timestamp.Equal(want) {
		t.Errorf("stored[0] = %+v", stored[0])
	}

	for outcome, want := range map[string]float64{OutcomeStored: 1, OutcomeInvalid: 2, OutcomeFailed: 1} {
		if got := testutil.ToFloat64(metrics.IngestMessages.WithLabelValues(outcome)); got != want {
			t.Errorf("ingest %s = %v, want %v", outcome, got, want)
		}
	}
}

func TestHandleMessage_NoHandler(t *testing.T) {
	s, metrics := newTestSubscriber(t)
	s.handleMessage("meteo/interior/measurements", []byte(`{"temperature":21,"humidity":45,"timestamp":"2026-10-18T10:00:00Z"}`))
	if got := testutil.ToFloat64(metrics.IngestMessages.WithLabelValues(OutcomeStored)); got != 0 {
		t.Errorf("stored = %v, want 0 without a handler", got)
	}
}

func TestConnect_RespectsContext(t *testing.T) {
	s, metrics := newTestSubscriber(t)
	defer s.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	// Port 1 refuses connections and ConnectRetry keeps the token pending.
	if err := s.Connect(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Connect error = %v, want context.DeadlineExceeded", err)
	}
	if s.IsConnected() {
		t.Error("IsConnected = true after failed connect")
	}
	if got := testutil.ToFloat64(metrics.MQTTConnected); got != 0 {
		t.Errorf("mqtt_connected = %v, want 0", got)
	}
}

func TestConnect_AfterDisconnect(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.Disconnect()
	s.Disconnect()

	if err := s.Connect(context.Background()); err == nil {
		t.Fatal("Connect after Disconnect should fail")
	}
}
