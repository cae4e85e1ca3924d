package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"showsync/models"
)

// ErrNotFound is returned when a lookup matches no stored pin.
var ErrNotFound = errors.New("not found")

// Repository persists pins that were successfully delivered to the timeline.
// It is the dedup ledger: a pin id present here is never dispatched again.
type Repository struct {
	conn *sql.DB
}

// AllPinIDs returns the set of every pin id ever recorded as sent.
func (r *Repository) AllPinIDs() (map[string]struct{}, error) {
	rows, err := r.conn.Query(`SELECT pin_id FROM sent_pins`)
	if err != nil {
		return nil, fmt.Errorf("query pin ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pin id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pin ids: %w", err)
	}
	return ids, nil
}

// UpsertPin records a sent pin and its metadata, keyed by pin id. The write
// is idempotent: re-recording the same pin id replaces the stored row. Under
// normal operation each id is written once, since the dedup filter prevents
// re-dispatch.
func (r *Repository) UpsertPin(pin models.Pin, meta models.PinMetadata) error {
	pinJSON, err := json.Marshal(pin)
	if err != nil {
		return fmt.Errorf("marshal pin: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.conn.Exec(`
		INSERT INTO sent_pins (pin_id, episode_id, pin_json, metadata_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pin_id) DO UPDATE SET
			episode_id = excluded.episode_id,
			pin_json = excluded.pin_json,
			metadata_json = excluded.metadata_json,
			updated_at = CURRENT_TIMESTAMP`,
		pin.ID, meta.EpisodeID, string(pinJSON), string(metaJSON))
	if err != nil {
		return fmt.Errorf("upsert pin %s: %w", pin.ID, err)
	}
	return nil
}

// PinForLaunchCode finds the stored pin whose action list contains the given
// launch code. Codes are only unique within one pin's action list; the first
// owning pin wins, which matches how the watchapp resolves them. Returns
// ErrNotFound when no stored pin carries the code.
func (r *Repository) PinForLaunchCode(code uint32) (models.Pin, models.PinMetadata, error) {
	var pinJSON, metaJSON string
	err := r.conn.QueryRow(`
		SELECT p.pin_json, p.metadata_json
		FROM sent_pins p, json_each(p.pin_json, '$.actions') a
		WHERE json_extract(a.value, '$.launchCode') = ?
		LIMIT 1`,
		int64(code)).Scan(&pinJSON, &metaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pin{}, models.PinMetadata{}, ErrNotFound
	}
	if err != nil {
		return models.Pin{}, models.PinMetadata{}, fmt.Errorf("query launch code %d: %w", code, err)
	}

	var pin models.Pin
	if err := json.Unmarshal([]byte(pinJSON), &pin); err != nil {
		return models.Pin{}, models.PinMetadata{}, fmt.Errorf("decode stored pin: %w", err)
	}
	var meta models.PinMetadata
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return models.Pin{}, models.PinMetadata{}, fmt.Errorf("decode stored metadata: %w", err)
	}
	return pin, meta, nil
}
