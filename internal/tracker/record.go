package tracker

import "encoding/json"

// Record is the metadata kept for one offloaded file within a directory
// store. An empty Hash means "hash unknown": such a record must be treated
// as changed for re-upload decisions.
type Record struct {
	RemoteID   string `json:"id"`
	Hash       string `json:"hash"`
	Size       int64  `json:"size"`
	UploadedAt int64  `json:"uploadedAt"`
}

// decodeRecord decodes one stored value. Two on-disk shapes are accepted:
// the legacy shape, a bare string holding only the remote ID, and the
// current structured shape. The probe branches on the raw JSON rather than
// recovering from a failed structured decode, so the path stays total.
func decodeRecord(raw json.RawMessage) (Record, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return Record{}, err
		}
		return Record{RemoteID: id}, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
