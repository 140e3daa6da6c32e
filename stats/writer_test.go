package stats

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	influxdb2api "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/require"
)

type fakeWriteAPI struct {
	mu      sync.Mutex
	points  []*write.Point
	flushed int
	errCh   chan error
}

var _ influxdb2api.WriteAPI = (*fakeWriteAPI)(nil)

func newFakeWriteAPI() *fakeWriteAPI { return &fakeWriteAPI{errCh: make(chan error)} }

func (f *fakeWriteAPI) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
}
func (f *fakeWriteAPI) WriteRecord(_ string) {}
func (f *fakeWriteAPI) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
}
func (f *fakeWriteAPI) Errors() <-chan error                                       { return f.errCh }
func (f *fakeWriteAPI) SetWriteFailedCallback(cb influxdb2api.WriteFailedCallback) {}

func (f *fakeWriteAPI) Points() []*write.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*write.Point, len(f.points))
	copy(out, f.points)
	return out
}

type testStats struct {
	instance string
	time     time.Time
	packets  uint
}

func (s testStats) StatsType() string     { return "test" }
func (s testStats) StatsInstance() string { return s.instance }
func (s testStats) StatsTime() time.Time  { return s.time }
func (s testStats) StatsFields() map[string]interface{} {
	return map[string]interface{}{"packets": s.packets}
}
func (s testStats) String() string { return "test stats" }

func testLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}

func tagMap(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, tag := range p.TagList() {
		out[tag.Key] = tag.Value
	}
	return out
}

func fieldMap(p *write.Point) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range p.FieldList() {
		out[field.Key] = field.Value
	}
	return out
}

func TestWriterOptionsEmpty(t *testing.T) {
	require.True(t, WriterOptions{}.Empty())
	require.False(t, WriterOptions{Print: true}.Empty())
	require.False(t, WriterOptions{InfluxDBURL: "http://localhost:8086"}.Empty())
}

func TestWriterHostname(t *testing.T) {
	writer, err := newWriter(WriterOptions{Hostname: "host.example.com", Interval: INTERVAL}, nil, testLogger(io.Discard))
	require.NoError(t, err)

	require.Equal(t, "host", writer.Hostname())
	require.Equal(t, time.Second, writer.Interval)
}

func TestWriterInterval(t *testing.T) {
	_, err := newWriter(WriterOptions{Hostname: "host", Interval: 0}, nil, testLogger(io.Discard))

	require.Error(t, err)
}

func TestWriterWriteStats(t *testing.T) {
	writeAPI := newFakeWriteAPI()
	writer, err := newWriter(WriterOptions{Hostname: "host", Instance: "127.0.0.1:9999", Interval: 0.5}, writeAPI, testLogger(io.Discard))
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)

	writer.WriteStats(testStats{time: now, packets: 10})
	writer.WriteStats(testStats{instance: "10.0.0.1:1234", time: now, packets: 5})
	writer.Close()

	points := writeAPI.Points()
	require.Len(t, points, 2)

	require.Equal(t, "test", points[0].Name())
	require.Equal(t, now, points[0].Time())
	require.Equal(t, map[string]string{"hostname": "host", "instance": "127.0.0.1:9999"}, tagMap(points[0]))
	require.Equal(t, map[string]interface{}{"packets": uint64(10)}, fieldMap(points[0]))

	require.Equal(t, map[string]string{"hostname": "host", "instance": "10.0.0.1:1234"}, tagMap(points[1]))

	require.Equal(t, 1, writeAPI.flushed)
}

func TestWriterPrint(t *testing.T) {
	var logBuf bytes.Buffer

	writer, err := newWriter(WriterOptions{Hostname: "host", Instance: "127.0.0.1:9999", Interval: 1, Print: true}, nil, testLogger(&logBuf))
	require.NoError(t, err)

	writer.WriteStats(testStats{time: time.Now(), packets: 1})

	require.Contains(t, logBuf.String(), "msg=test")
	require.Contains(t, logBuf.String(), "instance=127.0.0.1:9999")
	require.Contains(t, logBuf.String(), `stats="test stats"`)

	logBuf.Reset()
	writer.WriteStats(testStats{instance: "10.0.0.1:1234", time: time.Now(), packets: 1})

	require.Contains(t, logBuf.String(), "instance=10.0.0.1:1234")
}
