package changeset

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"catalog-sync/core/reconcile"
)

// OpType identifies a changeset operation.
type OpType string

const (
	// OpInsert creates an entity not yet persisted.
	OpInsert OpType = "insert"
	// OpUpdate rewrites an entity whose content hash changed.
	OpUpdate OpType = "update"
	// OpNoOp records an entity whose persisted state already matches.
	OpNoOp OpType = "noop"
	// OpDelete removes an entity no longer present upstream.
	// Only produced when pruning is enabled.
	OpDelete OpType = "delete"
)

// Operation is one write against persisted state. Every operation carries
// the external key and the content hash so its application can degrade to
// a no-op when storage already matches.
type Operation struct {
	Type OpType `json:"type"`

	// Key is the external key of the target entity.
	Key string `json:"key"`

	// Hash is the content hash of Fields. Empty for deletes.
	Hash string `json:"hash,omitempty"`

	// Fields holds the merged values to persist.
	Fields map[string]string `json:"fields,omitempty"`

	// Provenance maps each field to the source that supplied it.
	Provenance map[string]string `json:"provenance,omitempty"`
}

// Changeset is the ordered sequence of operations bringing persisted
// state in line with a merged view. Operations are sorted by external key
// so repeated runs over identical input produce identical ordering.
type Changeset struct {
	Operations []Operation `json:"operations"`
}

// Counts returns per-type operation counts.
func (c *Changeset) Counts() (inserts, updates, noops, deletes int) {
	for _, op := range c.Operations {
		switch op.Type {
		case OpInsert:
			inserts++
		case OpUpdate:
			updates++
		case OpNoOp:
			noops++
		case OpDelete:
			deletes++
		}
	}
	return
}

// Snapshot maps external key to the content hash last persisted for it.
type Snapshot map[string]string

// Hash computes the canonical content hash of a field map: sha256 over
// the fields serialized in sorted key order. Two entities with equal
// fields always hash equal, regardless of map iteration order.
func Hash(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(fields[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Compute diffs the merged view against the persisted snapshot and
// returns the minimal changeset. When prune is set, snapshot keys absent
// from the merged view become deletes; otherwise they are left alone.
func Compute(merged map[string]*reconcile.MergedEntity, snap Snapshot, prune bool) *Changeset {
	keys := make([]string, 0, len(merged)+len(snap))
	for k := range merged {
		keys = append(keys, k)
	}
	if prune {
		for k := range snap {
			if _, ok := merged[k]; !ok {
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	cs := &Changeset{Operations: make([]Operation, 0, len(keys))}
	for _, key := range keys {
		entity, ok := merged[key]
		if !ok {
			cs.Operations = append(cs.Operations, Operation{Type: OpDelete, Key: key})
			continue
		}

		fields := make(map[string]string, len(entity.Fields))
		provenance := make(map[string]string, len(entity.Fields))
		for name, fv := range entity.Fields {
			fields[name] = fv.Value
			provenance[name] = fv.Source
		}
		hash := Hash(fields)

		op := Operation{Key: key, Hash: hash, Fields: fields, Provenance: provenance}
		stored, exists := snap[key]
		switch {
		case !exists:
			op.Type = OpInsert
		case stored == hash:
			op.Type = OpNoOp
		default:
			op.Type = OpUpdate
		}
		cs.Operations = append(cs.Operations, op)
	}

	return cs
}
