// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Mara Veldt, Veloforge

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/veloforge/fitwire/pkg/fitbin"
	"github.com/veloforge/fitwire/pkg/fitdecode"
	"github.com/veloforge/fitwire/pkg/fitprofile"
)

var (
	serveAddr   string
	serveReplay bool
)

var serveCmd = &cobra.Command{
	Use:   "serve FILE",
	Short: "Stream decoded messages to WebSocket clients",
	Long: `Serve a FIT file over WebSocket. Each connecting client receives the
decoded messages as JSON text frames, in file order.

With --replay, record messages are paced by their timestamps (capped at
one second between frames) so a dashboard can replay the activity.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "localhost:8077", "Listen address")
	serveCmd.Flags().BoolVar(&serveReplay, "replay", false, "Pace record messages by their timestamps")
	rootCmd.AddCommand(serveCmd)
}

var upgrader = websocket.Upgrader{
	// The stream is read-only telemetry; any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wireMessage is the JSON frame sent for each decoded message.
type wireMessage struct {
	Name   string                 `json:"name"`
	Fields map[string]interface{} `json:"fields"`
	Units  map[string]string      `json:"units,omitempty"`
}

func runServe(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	opts := decodeOptions()
	path := args[0]

	http.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		log.Printf("client %s connected", r.RemoteAddr)
		if err := streamFile(conn, path, profile, opts); err != nil {
			log.Printf("client %s: %v", r.RemoteAddr, err)
		}
		log.Printf("client %s done", r.RemoteAddr)
	})

	fmt.Printf("Fitwire - serving %s on ws://%s/stream\n", path, serveAddr)
	fmt.Printf("Press Ctrl+C to exit\n")
	return http.ListenAndServe(serveAddr, nil)
}

// streamFile decodes the file fresh for one client and pushes each data
// message as a JSON text frame.
func streamFile(conn *websocket.Conn, path string, profile *fitprofile.Profile, opts fitdecode.Options) error {
	f, err := fitdecode.Open(path)
	if err != nil {
		return err
	}

	var last time.Time
	for {
		rec, err := f.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		data, ok := rec.(*fitbin.DataMessage)
		if !ok {
			continue
		}
		msg, err := fitdecode.DecodeMessage(data, profile, opts)
		if err != nil {
			return err
		}

		if serveReplay && msg.Name == "record" {
			if ts, ok := msg.Timestamp(); ok {
				if !last.IsZero() {
					delay := ts.Sub(last)
					if delay > time.Second {
						delay = time.Second
					}
					if delay > 0 {
						time.Sleep(delay)
					}
				}
				last = ts
			}
		}

		frame := wireMessage{
			Name:   msg.Name,
			Fields: make(map[string]interface{}, msg.NumFields()),
			Units:  make(map[string]string),
		}
		for _, name := range msg.FieldNames() {
			field, _ := msg.Field(name)
			frame.Fields[name] = jsonValue(field.Value)
			if field.Units != "" {
				frame.Units[name] = field.Units
			}
		}

		payload, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return err
		}
	}
}

// jsonValue maps decoded values onto JSON-encodable ones.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return fmt.Sprintf("%X", x)
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	default:
		return v
	}
}
