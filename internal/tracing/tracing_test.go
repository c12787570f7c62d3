package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled)
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "xwidget", cfg.ServiceName)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "unknown exporter", cfg: Config{Exporter: "kafka"}, wantErr: "unsupported exporter"},
		{name: "sample rate high", cfg: Config{Exporter: "none", SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", cfg: Config{Exporter: "none", SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "file without path", cfg: Config{Enabled: true, Exporter: "file"}, wantErr: "file_path"},
		{name: "disabled file without path", cfg: Config{Exporter: "file"}},
		{name: "stdout", cfg: Config{Enabled: true, Exporter: "stdout", SampleRate: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), SpanInit)
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "noop spans carry no context")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces", "walks.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "test-service",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, root := provider.Tracer().Start(context.Background(), SpanInit)
	_, child := provider.Tracer().Start(ctx, SpanAttach)
	child.SetAttributes(attribute.String(AttrWidgetPath, "widgets/text"))
	child.End()
	root.End()

	require.NoError(t, provider.Shutdown(context.Background()))

	f, err := os.Open(tracePath)
	require.NoError(t, err)
	defer f.Close()

	byName := make(map[string]SpanRecord)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		byName[rec.Name] = rec
	}
	require.NoError(t, scanner.Err())
	require.Len(t, byName, 2)

	attach := byName[SpanAttach]
	require.Equal(t, byName[SpanInit].SpanID, attach.ParentSpanID)
	require.Equal(t, byName[SpanInit].TraceID, attach.TraceID)
	require.Equal(t, "widgets/text", attach.Attributes[AttrWidgetPath])
}

func TestNewProvider_RejectsBadConfig(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
}

func TestNewProvider_EnabledWithoutExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanAttach)
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestWriterExporter_EncodesRecord(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewWriterExporter(&buf)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanAttach,
		StartTime: start,
		EndTime:   start.Add(5 * time.Millisecond),
		Status:    sdktrace.Status{Code: codes.Error, Description: "widget construction or init failed"},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrWidgetPath, "widgets/broken"),
			attribute.Int(AttrErrorCount, 1),
		},
		Events: []sdktrace.Event{{
			Name:       EventResolved,
			Time:       start,
			Attributes: []attribute.KeyValue{attribute.String(AttrWidgetPath, "widgets/broken")},
		}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))

	var rec SpanRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, SpanAttach, rec.Name)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "widget construction or init failed", rec.StatusMsg)
	require.InDelta(t, 5.0, rec.DurationMs, 0.001)
	require.EqualValues(t, 1, rec.Attributes[AttrErrorCount])
	require.Len(t, rec.Events, 1)
	require.Equal(t, EventResolved, rec.Events[0].Name)
	require.Empty(t, rec.ParentSpanID)
}

func TestFileExporter_ShutdownStopsExport(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "OK", statusString(codes.Ok))
	require.Equal(t, "ERROR", statusString(codes.Error))
	require.Equal(t, "UNSET", statusString(codes.Unset))
}
