package rqwire

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/rqwire/rqwire/errs"
)

// Node is one member of the cluster, as reported by the node-listing
// endpoint. A fresh set is built on every Nodes call; nothing is cached.
type Node struct {
	// ID is the node's stable cluster identifier.
	ID string
	// APIAddr is the HTTP API address, e.g. "http://127.0.0.1:4001".
	APIAddr string
	// Addr is the Raft address, e.g. "127.0.0.1:4002".
	Addr string
	// Reachable reports whether the queried node can contact this one.
	Reachable bool
	// Leader reports whether this node is the current cluster leader.
	Leader bool
	// Time is the observed round-trip latency in seconds.
	Time float64
}

// wireNode is the per-node record inside the node-listing response; the
// node id arrives as the enclosing map key, not as a field.
type wireNode struct {
	APIAddr   string  `json:"api_addr"`
	Addr      string  `json:"addr"`
	Reachable bool    `json:"reachable"`
	Leader    bool    `json:"leader"`
	Time      float64 `json:"time"`
}

// Nodes lists the cluster members known to the connected node, sorted by id.
// showNonvoters includes non-voting (read-only) nodes in the listing.
func (c *Connection) Nodes(ctx context.Context, showNonvoters bool) ([]Node, error) {
	path := "/nodes"
	if showNonvoters {
		path = "/nodes?nonvoters"
	}

	resp, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var top any
	if err := decodeJSON(resp.body, &top); err != nil {
		return nil, err
	}
	if _, ok := top.(map[string]any); !ok {
		return nil, errs.New(errs.KindSQL, "error deserializing response body")
	}

	var byID map[string]wireNode
	if err := decodeJSON(resp.body, &byID); err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(byID))
	for id, n := range byID {
		nodes = append(nodes, Node{
			ID:        id,
			APIAddr:   n.APIAddr,
			Addr:      n.Addr,
			Reachable: n.Reachable,
			Leader:    n.Leader,
			Time:      n.Time,
		})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

// Ready reports whether the node is ready to serve database requests and
// cluster operations. A non-200 status is a normal false, not an error;
// only transport and auth failures return one.
func (c *Connection) Ready(ctx context.Context) (bool, error) {
	resp, err := c.request(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return false, err
	}
	return resp.status == http.StatusOK, nil
}

// Remove removes the node with the given id from the cluster, returning
// true on success. The cluster must still be functional afterwards:
// removing the last tolerated failure can break it.
func (c *Connection) Remove(ctx context.Context, id string) (bool, error) {
	resp, err := c.request(ctx, http.MethodDelete, "/remove", map[string]string{"id": id})
	if err != nil {
		return false, err
	}
	return resp.status == http.StatusOK, nil
}

// Backup returns a copy of the node's SQLite database, fully buffered.
// Ship it to object storage with backupstore.Upload.
func (c *Connection) Backup(ctx context.Context) ([]byte, error) {
	resp, err := c.request(ctx, http.MethodGet, "/db/backup", nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, errs.New(errs.KindSQL,
			fmt.Sprintf("unexpected status code %d from /db/backup", resp.status))
	}
	return resp.body, nil
}
