package plugdb

// SetName saves the user-visible name of this device.
func (db *DB) SetName(name string) error {
	return db.setJSON(settingsBucket, nameKey, name)
}

func (db *DB) GetName() (string, error) {
	var name string

	if _, err := db.getJSON(settingsBucket, nameKey, &name); err != nil {
		return "", err
	}

	return name, nil
}
