package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupWriterJSON(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	if err := SetupWriter(&buf, "debug", FormatJSON); err != nil {
		t.Fatalf("SetupWriter: %v", err)
	}

	l := Component("player")
	l.Info().Str("guild", "42").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "player" || entry["guild"] != "42" || entry["message"] != "hello" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestSetupWriterRejectsBadInput(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	if err := SetupWriter(&buf, "loud", FormatJSON); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := SetupWriter(&buf, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
