package schoology

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// FetchCollection retrieves every page of a cursor-paginated collection
// endpoint, following links.next until absent. When key is empty the first
// object field holding a JSON array is used, a best-effort heuristic for
// endpoints whose list key is unknown or renamed.
func (c *Client) FetchCollection(ctx context.Context, path, key string) ([]json.RawMessage, error) {
	url := c.apiBase + "/v1/" + strings.TrimPrefix(path, "/")

	var items []json.RawMessage
	for url != "" {
		body, err := c.getJSON(ctx, url)
		if err != nil {
			return nil, err
		}
		pageItems, next, err := parsePage(body, key)
		if err != nil {
			return nil, fmt.Errorf("parse collection page %s: %w", url, err)
		}
		items = append(items, pageItems...)
		if next == url {
			// A self-referencing cursor would loop forever.
			break
		}
		url = next
	}
	return items, nil
}

// parsePage walks the page object in document order so the "first list-valued
// field" heuristic is well defined (a decoded map would lose field order).
func parsePage(body []byte, key string) ([]json.RawMessage, string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, "", err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, "", fmt.Errorf("expected JSON object, got %v", tok)
	}

	var (
		picked json.RawMessage
		next   string
	)
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, "", err
		}
		name, ok := nameTok.(string)
		if !ok {
			return nil, "", fmt.Errorf("expected object key, got %v", nameTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, "", err
		}

		switch {
		case name == "links":
			var links struct {
				Next string `json:"next"`
			}
			// Malformed links just means no further pages.
			_ = json.Unmarshal(raw, &links)
			next = links.Next
		case key != "" && name == key:
			picked = raw
		case key == "" && picked == nil && isJSONArray(raw):
			picked = raw
		}
	}

	if picked == nil {
		return nil, next, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(picked, &items); err != nil {
		// The expected key held a non-array value; treat the page as empty.
		return nil, next, nil
	}
	return items, next, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
