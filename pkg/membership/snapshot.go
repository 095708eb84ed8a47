package membership

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// Metadata keys that carry mutual-group hints. The first is what the
// exporter writes; the second is accepted as an alias.
const (
	HintKeyServers = "mutual_servers"
	HintKeyGroups  = "mutual_groups"
)

var hintKeys = []string{HintKeyServers, HintKeyGroups}

// Snapshot is the raw ingestion format: group name → member id → metadata.
type Snapshot map[string]map[string]MemberInfo

// MemberInfo is the metadata attached to one member of one group.
type MemberInfo struct {
	// MutualGroups lists additional groups the member shares with the viewer.
	// They are treated exactly like direct membership.
	MutualGroups []string
}

// UnmarshalJSON decodes member metadata without ever failing. Values that are
// not objects, hint lists that are not arrays, and non-string entries are all
// ignored.
func (m *MemberInfo) UnmarshalJSON(data []byte) error {
	m.MutualGroups = nil

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	for _, key := range hintKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		m.MutualGroups = append(m.MutualGroups, decodeHints(raw)...)
	}
	return nil
}

// MarshalJSON writes the hints under the canonical key.
func (m MemberInfo) MarshalJSON() ([]byte, error) {
	if len(m.MutualGroups) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string][]string{HintKeyServers: m.MutualGroups})
}

func decodeHints(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// ReadSnapshot decodes a snapshot from r. The two outer levels must be JSON
// objects; member metadata is lenient (see [MemberInfo.UnmarshalJSON]).
// A JSON null document decodes to an empty snapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// Canonical returns a deterministic JSON encoding of the snapshot, suitable
// for content hashing. Go's encoder sorts map keys, and hint lists are copied
// and sorted so that hint order does not change the hash.
func (s Snapshot) Canonical() ([]byte, error) {
	norm := make(Snapshot, len(s))
	for group, members := range s {
		m := make(map[string]MemberInfo, len(members))
		for id, info := range members {
			hints := slices.Clone(info.MutualGroups)
			slices.Sort(hints)
			m[id] = MemberInfo{MutualGroups: hints}
		}
		norm[group] = m
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(norm); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
