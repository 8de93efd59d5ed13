// Package monitoring exposes an HTTP introspection server for a
// running predictor: transition-table and access-history snapshots,
// a rolling window of recent events, process resource usage, and an
// on-demand CPU profile. It never mutates the predictor it watches;
// every handler reads through a Snapshotter, which returns copies.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/markovprefetch"
)

// Snapshotter is satisfied by both prefetcher.Prefetcher and
// sequencer.Sequencer: anything that can hand back read-only copies of
// its transition table and access history.
type Snapshotter interface {
	AccessHistorySnapshot() []prefetcher.HistoryEntry
	TransitionTableSnapshot() [][]uint32
}

// Server is an HTTP introspection server for a Snapshotter.
type Server struct {
	snapshotter Snapshotter
	portNumber  int

	eventsLock sync.Mutex
	events     []prefetcher.PrefetchEvent
	maxEvents  int
}

// NewServer creates a Server that reports on s.
func NewServer(s Snapshotter) *Server {
	return &Server{
		snapshotter: s,
		maxEvents:   1000,
	}
}

// WithPortNumber sets the TCP port the server listens on. A value below
// 1000 is rejected in favor of an OS-assigned port, matching the
// reserved-port guard used elsewhere in this ecosystem.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"monitoring: port number %d is not allowed, using a random port instead\n",
			portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// RecordEvent appends evt to the rolling window the /api/history
// endpoint serves, discarding the oldest entry once the window is full.
func (s *Server) RecordEvent(evt prefetcher.PrefetchEvent) {
	s.eventsLock.Lock()
	defer s.eventsLock.Unlock()

	s.events = append(s.events, evt)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// StartServer starts serving in a background goroutine and returns the
// TCP address it bound to.
func (s *Server) StartServer() net.Addr {
	r := mux.NewRouter()
	r.HandleFunc("/api/snapshot", s.snapshot)
	r.HandleFunc("/api/history", s.history)
	r.HandleFunc("/api/resource", s.resource)
	r.HandleFunc("/api/profile", s.profile)

	actualPort := ":0"
	if s.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(os.Stderr,
		"monitoring: serving on http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return listener.Addr()
}

type snapshotRsp struct {
	AccessHistory   []prefetcher.HistoryEntry `json:"access_history"`
	TransitionTable [][]uint32                `json:"transition_table"`
}

func (s *Server) snapshot(w http.ResponseWriter, _ *http.Request) {
	rsp := snapshotRsp{
		AccessHistory:   s.snapshotter.AccessHistorySnapshot(),
		TransitionTable: s.snapshotter.TransitionTableSnapshot(),
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&rsp)

	dieOnErr(serializer.Serialize(w))
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	s.eventsLock.Lock()
	events := make([]prefetcher.PrefetchEvent, len(s.events))
	copy(events, s.events)
	s.eventsLock.Unlock()

	b, err := json.Marshal(events)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) resource(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	b, err := json.Marshal(resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	})
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (s *Server) profile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	dieOnErr(pprof.StartCPUProfile(buf))
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	b, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
