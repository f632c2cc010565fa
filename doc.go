// Package rqwire is a client for rqlite, the distributed database built on
// SQLite. It speaks rqlite's HTTP(S) JSON protocol over a single persistent
// connection per node, with optional TLS and Basic Auth, and decodes the
// heterogeneous JSON row encoding into typed values.
//
// Connect to a node, run statements, read rows:
//
//	conn, err := rqwire.NewConnectOptions("127.0.0.1", 4001).Connect(ctx)
//	if err != nil { ... }
//	defer conn.Close()
//
//	cur, err := conn.Query(ctx, "SELECT id, name FROM foo WHERE id = ?", 1)
//	if err != nil { ... }
//	for row := cur.Next(); row != nil; row = cur.Next() {
//	    id, _ := row.Int(0)
//	    name, _ := row.String(1)
//	    ...
//	}
//
// A Connection serializes its requests internally, so it is safe to share
// between goroutines, but they will queue: only one request is ever in
// flight. Use one Connection per concurrent caller for parallelism. No
// internal timeouts are applied; bound each call with a context deadline if
// the node may hang.
//
// Every error is an *errs.Error; match on its kind to decide whether to
// reconnect (connection), re-authenticate (auth), or treat the statement as
// rejected (sql, data_ser).
package rqwire
