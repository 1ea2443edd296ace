// Package internal hosts the operator-facing inspection page: a plain
// HTML view over the raw BadgerDB keyspace, useful when debugging
// delivery status transitions without a client attached.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves the inspection page on its own port, separate
// from the API listener so it can stay firewalled off.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = ChatMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("127.0.0.1:%d", port), mux)
	}()
}

// ChatMapper knows the key layout of the chat store:
//
//	user:{id}                        account records
//	username:{name}                  uniqueness index
//	msg:{convKey}:{tsNano}:{uuid}    messages
//	freq:{id}                        friend requests
//	inbox-sent:{receiver}:{msgKey}   pending-delivery index
func ChatMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	switch parts[0] {
	case "user":
		row.Type = "USER"
		row.EntityID = shorten(parts[1])
		row.Detail = summarize(val, "username", "display_name")
	case "username":
		row.Type = "INDEX"
		row.EntityID = parts[1]
		row.Detail = "-> " + string(val)
	case "msg":
		row.Type = "MESSAGE"
		if len(parts) >= 5 {
			if tsNano, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
				row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
			}
			row.EntityID = shorten(parts[4])
		}
		row.Detail = summarize(val, "status", "content")
	case "freq":
		row.Type = "FRIEND_REQ"
		row.EntityID = shorten(parts[1])
		row.Detail = summarize(val, "status", "sender_id", "receiver_id")
	case "inbox-sent":
		row.Type = "INBOX"
		row.EntityID = shorten(parts[1])
		row.Detail = "pending -> " + strings.Join(parts[2:], ":")
	}
	return row
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// summarize pulls a handful of fields out of the stored JSON record.
func summarize(val []byte, fields ...string) string {
	var record map[string]any
	if err := json.Unmarshal(val, &record); err != nil {
		return "Size: " + strconv.Itoa(len(val)) + " bytes"
	}

	var parts []string
	for _, field := range fields {
		if v, ok := record[field]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", field, v))
		}
	}
	return strings.Join(parts, " ")
}
