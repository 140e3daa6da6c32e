package stats

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2api "github.com/influxdata/influxdb-client-go/v2/api"
)

const INFLUXDB_BUCKET = "dashes"
const INTERVAL = 1.0

type WriterOptions struct {
	InfluxDBURL    string `long:"influxdb-url" value-name:"http://HOST:8086" description:"Write stats to InfluxDB"`
	InfluxDBToken  string `long:"influxdb-token" description:"InfluxDB API token"`
	InfluxDBOrg    string `long:"influxdb-org" description:"InfluxDB organization"`
	InfluxDBBucket string `long:"influxdb-bucket" default:"dashes" description:"InfluxDB bucket"`

	// The hostname this instance is running on to uniquely identify the source of measurements
	// If multiple instances are running on a single host, they must have a different hostname
	Hostname string `long:"stats-hostname" description:"Hostname to identify this source (default: system hostname)"`

	// The target being measured
	Instance string `long:"stats-instance" description:"Instance to identify the target (default: address)"`

	Interval float64 `long:"stats-interval" value-name:"SECONDS" default:"1.0" description:"Stats collection interval"`

	// Log stats on stderr
	Print bool `long:"stats-print" description:"Log stats"`
}

// No stats output configured
func (options WriterOptions) Empty() bool {
	return options.InfluxDBURL == "" && !options.Print
}

// Writes Stats as InfluxDB points tagged with the source hostname and target instance
type Writer struct {
	options  WriterOptions
	Interval time.Duration
	log      *slog.Logger

	influxdbClient influxdb2.Client
	writeAPI       influxdb2api.WriteAPI
}

func NewWriter(options WriterOptions, log *slog.Logger) (*Writer, error) {
	var influxdbClient influxdb2.Client
	var writeAPI influxdb2api.WriteAPI

	if options.InfluxDBURL != "" {
		if options.InfluxDBBucket == "" {
			options.InfluxDBBucket = INFLUXDB_BUCKET
		}

		influxdbClient = influxdb2.NewClient(options.InfluxDBURL, options.InfluxDBToken)
		writeAPI = influxdbClient.WriteAPI(options.InfluxDBOrg, options.InfluxDBBucket)
	}

	self, err := newWriter(options, writeAPI, log)
	if err != nil {
		if influxdbClient != nil {
			influxdbClient.Close()
		}
		return nil, err
	}

	self.influxdbClient = influxdbClient

	return self, nil
}

func newWriter(options WriterOptions, writeAPI influxdb2api.WriteAPI, log *slog.Logger) (*Writer, error) {
	if options.Hostname == "" {
		if hostname, err := os.Hostname(); err != nil {
			return nil, fmt.Errorf("Hostname: %w", err)
		} else {
			options.Hostname = hostname
		}
	}
	if strings.Contains(options.Hostname, ".") {
		log.Debug("stripping domain from stats hostname", "hostname", options.Hostname)
		options.Hostname = strings.Split(options.Hostname, ".")[0]
	}

	if options.Interval <= 0 {
		return nil, fmt.Errorf("Invalid stats interval: %v", options.Interval)
	}

	self := &Writer{
		options:  options,
		Interval: time.Duration(options.Interval * float64(time.Second)),
		log:      log.With("component", "stats"),
		writeAPI: writeAPI,
	}

	if writeAPI != nil {
		// must be drained before any writes
		go self.logErrors(writeAPI.Errors())
	}

	return self, nil
}

func (self *Writer) String() string {
	return fmt.Sprintf("%v/%v?hostname=%v&instance=%v", self.options.InfluxDBURL, self.options.InfluxDBBucket, self.options.Hostname, self.options.Instance)
}

func (self *Writer) Hostname() string {
	return self.options.Hostname
}

// errors from the asynchronous writer
func (self *Writer) logErrors(errorsChan <-chan error) {
	for err := range errorsChan {
		self.log.Warn("InfluxDB write error", "error", err)
	}
}

// The given instance, or the configured instance if empty
func (self *Writer) instance(instance string) string {
	if instance == "" {
		return self.options.Instance
	}
	return instance
}

// Write a point for the given instance, or the configured instance if empty
func (self *Writer) Write(measurement string, instance string, timestamp time.Time, fields map[string]interface{}) {
	instance = self.instance(instance)

	if self.writeAPI == nil {
		return
	}

	tags := map[string]string{
		"hostname": self.options.Hostname,
		"instance": instance,
	}

	self.writeAPI.WritePoint(influxdb2.NewPoint(measurement, tags, fields, timestamp))
}

func (self *Writer) WriteStats(stats Stats) {
	if self.options.Print {
		self.log.Info(stats.StatsType(), "instance", self.instance(stats.StatsInstance()), "stats", stats.String())
	}

	self.Write(stats.StatsType(), stats.StatsInstance(), stats.StatsTime(), stats.StatsFields())
}

// Flush any pending points
func (self *Writer) Close() {
	if self.writeAPI != nil {
		self.writeAPI.Flush()
	}
	if self.influxdbClient != nil {
		self.influxdbClient.Close()
	}
}
