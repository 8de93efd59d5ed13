package telemetry

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/markovprefetch"
)

// SQLiteSink is an EventSink that writes PrefetchEvents to a SQLite
// database in batches. It registers a Flush with atexit, which runs only
// when the process exits through atexit.Exit; a plain return from main
// or os.Exit does not flush.
type SQLiteSink struct {
	*sql.DB
	statement *sql.Stmt

	sessionID string
	dbName    string

	buffered  []prefetcher.PrefetchEvent
	seq       uint64
	batchSize int
}

// NewSQLiteSink creates a sink that will write to path. Call Init
// before Record.
func NewSQLiteSink(path string) *SQLiteSink {
	s := &SQLiteSink{
		dbName:    path,
		batchSize: 1000,
	}

	atexit.Register(func() { s.Flush() })

	return s
}

// Init establishes the database connection, creates the schema, and
// prepares the insert statement. It panics if the database cannot be
// opened or already exists.
func (s *SQLiteSink) Init() {
	s.sessionID = xid.New().String()

	s.createDatabase()
	s.createTable()
	s.prepareStatement()
}

func (s *SQLiteSink) createDatabase() {
	if s.dbName == "" {
		s.dbName = "markovprefetch_trace_" + xid.New().String()
	}

	filename := s.dbName + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("telemetry: file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "telemetry: recording events to %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	s.DB = db
}

func (s *SQLiteSink) createTable() {
	s.mustExecute(`
		create table event
		(
			session_id       varchar(20) not null,
			seq              integer     not null,
			address          integer     not null,
			hit              boolean     not null,
			prefetch_hit     boolean     not null,
			demand_hit       boolean     not null,
			prefetch         boolean     not null,
			prefetch_address integer     not null default 0,
			history_len      integer     not null
		);
	`)

	s.mustExecute(`
		create index event_session_id_index on event (session_id);
	`)

	s.mustExecute(`
		create index event_address_index on event (address);
	`)
}

func (s *SQLiteSink) prepareStatement() {
	stmt, err := s.Prepare(`
		insert into event
		(session_id, seq, address, hit, prefetch_hit, demand_hit,
		 prefetch, prefetch_address, history_len)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		panic(err)
	}

	s.statement = stmt
}

// Record buffers evt for eventual persistence, flushing immediately
// once the batch size is reached.
func (s *SQLiteSink) Record(evt prefetcher.PrefetchEvent) {
	s.buffered = append(s.buffered, evt)
	if len(s.buffered) >= s.batchSize {
		s.Flush()
	}
}

// Flush writes every buffered event to the database in one
// transaction.
func (s *SQLiteSink) Flush() {
	if len(s.buffered) == 0 {
		return
	}

	s.mustExecute("BEGIN TRANSACTION")

	for _, evt := range s.buffered {
		s.seq++

		_, err := s.statement.Exec(
			s.sessionID,
			s.seq,
			evt.Address,
			evt.Hit,
			evt.PrefetchHit,
			evt.DemandHit,
			evt.Prefetch,
			evt.PrefetchAddress,
			len(evt.AccessHistory),
		)
		if err != nil {
			panic(err)
		}
	}

	s.mustExecute("COMMIT TRANSACTION")

	s.buffered = nil
}

func (s *SQLiteSink) mustExecute(query string) sql.Result {
	res, err := s.Exec(query)
	if err != nil {
		panic(fmt.Errorf("telemetry: failed to execute %q: %w", query, err))
	}

	return res
}
