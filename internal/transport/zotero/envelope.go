package zotero

import (
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
)

// envelope is the JSON shape of one item in Web API v3 responses.
type envelope struct {
	Key     string         `json:"key"`
	Version int            `json:"version"`
	Data    map[string]any `json:"data"`
}

func (e *envelope) toItem() item.Item {
	key := e.Key
	if key == "" {
		key, _ = e.Data["key"].(string)
	}
	itemType, _ := e.Data["itemType"].(string)
	version := e.Version
	if version == 0 {
		if v, ok := e.Data["version"].(float64); ok {
			version = int(v)
		}
	}
	return item.New(key, itemType, version, e.Data)
}
