package sqlitestore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/sqlitestore/pkg/sessiondb"
)

// Session is the session payload: a JSON object owned by the host framework.
// Cookie metadata, when present, lives under the "cookie" key.
type Session map[string]any

func encodeSession(sess Session) (string, error) {
	b, err := json.Marshal(sess)
	if err != nil {
		return "", errors.Join(ErrEncodePayload, err)
	}
	return string(b), nil
}

func decodeSession(payload string) (Session, error) {
	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, errors.Join(ErrDecodePayload, err)
	}
	return sess, nil
}

// decodeRecords decodes every record with a non-empty payload.
func decodeRecords(recs []sessiondb.Record) ([]Session, error) {
	out := make([]Session, 0, len(recs))
	for _, rec := range recs {
		if rec.Payload == "" {
			continue
		}
		sess, err := decodeSession(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("sid %q: %w", rec.SID, err)
		}
		out = append(out, sess)
	}
	return out, nil
}
