package sqlstore

import (
	"database/sql"

	"github.com/julianstephens/nextup/internal/models"
)

func (s *Store) GetPreferences() (models.Preferences, error) {
	rows, err := s.query(s.db, "SELECT key, value FROM settings")
	if err != nil {
		return models.Preferences{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Preferences{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Preferences{}, err
	}

	prefs, err := models.MapToPreferences(data)
	if err != nil {
		return models.Preferences{}, err
	}
	models.ApplyDefaultPreferences(&prefs)
	return prefs, nil
}

func (s *Store) SavePreferences(prefs models.Preferences) error {
	return s.inTx(func(tx *sql.Tx) error {
		for key, value := range models.PreferencesToMap(prefs) {
			if _, err := s.exec(tx, `
				INSERT INTO settings (key, value) VALUES (?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
