package util

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SaveJSON marshals v and writes it to savePath, creating parent
// directories as needed.
func SaveJSON(savePath string, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(savePath); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			os.MkdirAll(dir, os.ModePerm)
		}
	}
	return os.WriteFile(savePath, bs, 0644)
}

// LoadJSON reads loadPath and unmarshals it into v.
func LoadJSON(loadPath string, v interface{}) error {
	bs, err := os.ReadFile(loadPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(bs, v)
}
