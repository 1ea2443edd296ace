// Viewer is a read-only terminal inspector for the chat store. It opens
// the BadgerDB of a running server without taking the lock and prints the
// records under a key prefix as a table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"/tmp/chatline/badger"`
	Colours        bool   `envconfig:"VIEWER_COLOURS" default:"true"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (user:, username:, msg:, freq:, inbox-sent:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := fmt.Sprintf("  ====== chat store @ %s ======", *dbPath)
	if config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				table.Append(toRow(string(item.Key()), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, val []byte) []string {
	kind := "RAW"
	timestamp := "--:--:--"
	entityID := "--------"
	detail := "Size: " + strconv.Itoa(len(val)) + " bytes"

	parts := strings.Split(key, ":")
	switch parts[0] {
	case "user":
		kind = "USER"
		entityID = shorten(parts[1])
		detail = pick(val, "username", "display_name")
	case "username":
		kind = "INDEX"
		entityID = parts[1]
		detail = "-> " + string(val)
	case "msg":
		kind = "MESSAGE"
		if len(parts) >= 5 {
			if tsNano, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
				timestamp = time.Unix(0, tsNano).Format("15:04:05")
			}
			entityID = shorten(parts[4])
		}
		detail = pick(val, "status", "sender", "content")
	case "freq":
		kind = "FRIEND_REQ"
		entityID = shorten(parts[1])
		detail = pick(val, "status", "sender_id", "receiver_id")
	}

	return []string{key, kind, timestamp, entityID, detail}
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func pick(val []byte, fields ...string) string {
	var record map[string]any
	if err := json.Unmarshal(val, &record); err != nil {
		return "unreadable record"
	}

	var parts []string
	for _, field := range fields {
		if v, ok := record[field]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", field, v))
		}
	}
	return strings.Join(parts, " ")
}

func openDB(path string) (*badger.DB, error) {
	// BypassLockGuard allows opening while the server holds the lock
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
