// Package neo4j exports sequences into a Neo4j graph database.
//
// Every node becomes a (:ListNode {list, position, data}) vertex. List links
// become [:NEXT] relationships and cross-references [:RAND] relationships,
// so a sequence can be explored with Cypher:
//
//	MATCH (a:ListNode {list: "inlet"})-[:RAND]->(b) RETURN a.position, b.position
//
// Writes use batched UNWIND statements; a list is replaced as a whole.
package neo4j

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	gdb "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 1000

// Config holds connection settings.
type Config struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// Loader loads sequences into a Neo4j database.
type Loader struct {
	driver    gdb.DriverWithContext
	database  string
	BatchSize int
	Logger    *log.Logger
}

// NewLoader connects to Neo4j and verifies connectivity.
func NewLoader(ctx context.Context, cfg Config, logger *log.Logger) (*Loader, error) {
	if cfg.URI == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "neo4j export needs a uri")
	}
	if logger == nil {
		logger = log.Default()
	}
	driver, err := gdb.NewDriverWithContext(cfg.URI, gdb.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "create neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errs.Wrap(errs.ErrCodeIO, err, "connect to neo4j at %s", cfg.URI)
	}
	return &Loader{
		driver:    driver,
		database:  cfg.Database,
		BatchSize: DefaultBatchSize,
		Logger:    logger,
	}, nil
}

// Close releases the underlying driver resources.
func (l *Loader) Close(ctx context.Context) error {
	return l.driver.Close(ctx)
}

func (l *Loader) run(ctx context.Context, cypher string, params map[string]any) error {
	var opts []gdb.ExecuteQueryConfigurationOption
	if l.database != "" {
		opts = append(opts, gdb.ExecuteQueryWithDatabase(l.database))
	}
	_, err := gdb.ExecuteQuery(ctx, l.driver, cypher, params, gdb.EagerResultTransformer, opts...)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "neo4j query")
	}
	return nil
}

// runBatches sends rows in chunks of BatchSize as $batch.
func (l *Loader) runBatches(ctx context.Context, cypher, name string, rows []map[string]any) error {
	for _, chunk := range chunks(rows, l.BatchSize) {
		if err := l.run(ctx, cypher, map[string]any{"list": name, "batch": chunk}); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the lookup index on (list, position) exists.
func (l *Loader) CreateIndexes(ctx context.Context) error {
	return l.run(ctx,
		"CREATE INDEX list_node_position IF NOT EXISTS FOR (n:ListNode) ON (n.list, n.position)",
		nil)
}

// Clean removes every node and relationship of the named list.
func (l *Loader) Clean(ctx context.Context, name string) error {
	l.Logger.Debug("cleaning list", "list", name)
	return l.run(ctx,
		"MATCH (n:ListNode {list: $list}) DETACH DELETE n",
		map[string]any{"list": name})
}

// Stats counts what [Loader.Load] wrote.
type Stats struct {
	Nodes int
	Next  int
	Rand  int
}

// Load replaces the named list with s.
func (l *Loader) Load(ctx context.Context, name string, s *list.Sequence) (Stats, error) {
	if err := l.Clean(ctx, name); err != nil {
		return Stats{}, err
	}

	nodes := nodeRows(s)
	l.Logger.Info("loading nodes", "list", name, "nodes", len(nodes))
	if err := l.runBatches(ctx,
		`UNWIND $batch AS row
		 MERGE (n:ListNode {list: $list, position: row.position})
		 SET n.data = row.data, n.size = row.size`,
		name, nodes); err != nil {
		return Stats{}, err
	}

	next := nextRows(s)
	if err := l.runBatches(ctx,
		`UNWIND $batch AS row
		 MATCH (a:ListNode {list: $list, position: row.from}), (b:ListNode {list: $list, position: row.to})
		 MERGE (a)-[:NEXT]->(b)`,
		name, next); err != nil {
		return Stats{}, err
	}

	rand := randRows(s)
	l.Logger.Info("loading cross-references", "list", name, "edges", len(rand))
	if err := l.runBatches(ctx,
		`UNWIND $batch AS row
		 MATCH (a:ListNode {list: $list, position: row.from}), (b:ListNode {list: $list, position: row.to})
		 MERGE (a)-[:RAND]->(b)`,
		name, rand); err != nil {
		return Stats{}, err
	}

	return Stats{Nodes: len(nodes), Next: len(next), Rand: len(rand)}, nil
}

func nodeRows(s *list.Sequence) []map[string]any {
	rows := make([]map[string]any, 0, s.Len())
	s.Walk(func(pos, _ int, n list.Node) bool {
		rows = append(rows, map[string]any{
			"position": pos,
			"data":     property(n.Data),
			"size":     len(n.Data),
		})
		return true
	})
	return rows
}

func nextRows(s *list.Sequence) []map[string]any {
	if s.Len() < 2 {
		return nil
	}
	rows := make([]map[string]any, 0, s.Len()-1)
	for pos := 0; pos < s.Len()-1; pos++ {
		rows = append(rows, map[string]any{"from": pos, "to": pos + 1})
	}
	return rows
}

func randRows(s *list.Sequence) []map[string]any {
	positions := s.Positions()
	var rows []map[string]any
	s.Walk(func(pos, _ int, n list.Node) bool {
		if n.HasCrossRef() {
			rows = append(rows, map[string]any{"from": pos, "to": positions[n.CrossRef]})
		}
		return true
	})
	return rows
}

// property stores valid UTF-8 payloads as strings and anything else as a
// byte array.
func property(data []byte) any {
	if utf8.Valid(data) {
		return string(data)
	}
	return data
}

func chunks(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		out = append(out, rows[start:min(start+size, len(rows))])
	}
	return out
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d next, %d rand", s.Nodes, s.Next, s.Rand)
}
