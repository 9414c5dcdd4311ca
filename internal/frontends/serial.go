package frontends

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/shridharbhandiwad/radix-go/internal/schema"
)

// SerialPort abstracts the physical link so tests can substitute a recorded
// stream, mirroring the teacher's RadarPortInterface/MockRadarPort split in
// radar/serial.go.
type SerialPort interface {
	Events() <-chan string
	Monitor(ctx context.Context) error
	Close() error
}

// serialLine is the line-protocol JSON object the serial frontend expects
// one per newline-terminated line: {"format_tag":"FMCW","fields":{...}}.
type serialLine struct {
	FormatTag    string             `json:"format_tag"`
	Fields       map[string]float64 `json:"fields"`
	IsFalseAlarm bool               `json:"is_false_alarm"`
}

// SerialFrontend drives a real sensor over a serial line, satisfying
// spec.md §1's "any implementation may substitute a real driver" clause. It
// buffers parsed lines until Tick is called, so its cadence is decoupled
// from the physical device's.
type SerialFrontend struct {
	sensorID string
	port     SerialPort
	buffer   chan schema.RawDetection
}

// NewSerialFrontend opens a real serial port at 115200-8-N-1, the same mode
// the teacher's RadarPort uses.
func NewSerialFrontend(sensorID, portName string) (*SerialFrontend, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", portName, err)
	}
	return newSerialFrontend(sensorID, &realSerialPort{port: p, events: make(chan string)}), nil
}

// NewSerialFrontendWithPort wires a pre-built SerialPort (e.g. a test
// double), bypassing device access.
func NewSerialFrontendWithPort(sensorID string, port SerialPort) *SerialFrontend {
	return newSerialFrontend(sensorID, port)
}

func newSerialFrontend(sensorID string, port SerialPort) *SerialFrontend {
	return &SerialFrontend{
		sensorID: sensorID,
		port:     port,
		buffer:   make(chan schema.RawDetection, 256),
	}
}

func (f *SerialFrontend) Info() SensorInfo {
	return SensorInfo{ID: f.sensorID, Type: "SERIAL", Location: [3]float64{0, 0, 0}, Enabled: true}
}

// Run starts the background line reader; it blocks until ctx is cancelled
// or the port closes.
func (f *SerialFrontend) Run(ctx context.Context) error {
	go f.consume(ctx)
	return f.port.Monitor(ctx)
}

func (f *SerialFrontend) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-f.port.Events():
			if !ok {
				return
			}
			det, err := parseSerialLine(f.sensorID, line)
			if err != nil {
				log.Printf("frontends: dropping unparseable serial line from %s: %v", f.sensorID, err)
				continue
			}
			select {
			case f.buffer <- det:
			default:
				log.Printf("frontends: serial buffer full for %s, dropping detection", f.sensorID)
			}
		}
	}
}

func parseSerialLine(sensorID, line string) (schema.RawDetection, error) {
	line = strings.TrimSpace(line)
	var parsed serialLine
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		return schema.RawDetection{}, err
	}
	return schema.RawDetection{
		Timestamp:    time.Now(),
		SensorID:     sensorID,
		FormatTag:    schema.FormatTag(parsed.FormatTag),
		Fields:       parsed.Fields,
		IsFalseAlarm: parsed.IsFalseAlarm,
	}, nil
}

// Tick drains whatever has buffered since the last call. dt is unused — the
// physical sensor, not the orchestrator, paces this frontend.
func (f *SerialFrontend) Tick(now time.Time, dt float64) []schema.RawDetection {
	var out []schema.RawDetection
	for {
		select {
		case det := <-f.buffer:
			det.Timestamp = now
			out = append(out, det)
		default:
			return out
		}
	}
}

// Close releases the underlying port.
func (f *SerialFrontend) Close() error {
	return f.port.Close()
}

// realSerialPort adapts serial.Port to the SerialPort interface, grounded on
// the teacher's RadarPort.
type realSerialPort struct {
	port   serial.Port
	events chan string
}

func (p *realSerialPort) Events() <-chan string { return p.events }

func (p *realSerialPort) Close() error { return p.port.Close() }

func (p *realSerialPort) Monitor(ctx context.Context) error {
	defer p.port.Close()
	scan := bufio.NewScanner(p.port)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if !scan.Scan() {
				return scan.Err()
			}
			line := scan.Text()
			select {
			case p.events <- line:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
