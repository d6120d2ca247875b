package data

import (
	"encoding/json"
	"fmt"
	"os"

	"battlecore/battle/components"
)

// The catalog files below follow the teacher's ReadMonsterData /
// ReadWeaponData shape (os.ReadFile + json.Unmarshal into a wrapper
// struct), but return errors instead of panicking: this package is a
// library called from the engine's setup path and from tests, neither
// of which wants a bad data file to take down the whole process.

type partCatalogFile struct {
	Parts []JSONPart `json:"parts"`
}

// LoadPartCatalog reads and resolves a part catalog JSON file.
func LoadPartCatalog(path string) (*PartCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read part catalog: %w", err)
	}
	var file partCatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("data: parse part catalog: %w", err)
	}

	byID := make(map[string]components.PartSpec, len(file.Parts))
	for _, p := range file.Parts {
		spec, err := p.Resolve()
		if err != nil {
			return nil, fmt.Errorf("data: part %q: %w", p.ID, err)
		}
		byID[p.ID] = spec
	}
	return &PartCatalog{ByID: byID}, nil
}

type medalCatalogFile struct {
	Medals []JSONMedal `json:"medals"`
}

// LoadMedalCatalog reads a medal (combatant archetype) catalog JSON file.
func LoadMedalCatalog(path string) (*MedalCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read medal catalog: %w", err)
	}
	var file medalCatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("data: parse medal catalog: %w", err)
	}

	byID := make(map[string]JSONMedal, len(file.Medals))
	for _, m := range file.Medals {
		byID[m.ID] = m
	}
	return &MedalCatalog{ByID: byID}, nil
}

type messageCatalogFile struct {
	Messages []JSONMessageTemplate `json:"messages"`
}

// LoadMessageCatalog reads a display-message template catalog JSON file.
func LoadMessageCatalog(path string) (*MessageCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read message catalog: %w", err)
	}
	var file messageCatalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("data: parse message catalog: %w", err)
	}

	byKey := make(map[string]string, len(file.Messages))
	for _, msg := range file.Messages {
		byKey[msg.Key] = msg.Format
	}
	return &MessageCatalog{ByKey: byKey}, nil
}

// LoadTunables reads a tunables JSON file. Fields absent from the file
// keep Go's zero value, so callers that only want to override a few
// values should start from DefaultTunables and unmarshal on top of it
// rather than call this directly -- see LoadTunablesWithDefaults.
func LoadTunables(path string) (Tunables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("data: read tunables: %w", err)
	}
	var t Tunables
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tunables{}, fmt.Errorf("data: parse tunables: %w", err)
	}
	return t, nil
}

// LoadTunablesWithDefaults loads tunables.json over top of
// DefaultTunables, so a partial file only overrides the fields it sets.
func LoadTunablesWithDefaults(path string) (Tunables, error) {
	t := DefaultTunables()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("data: read tunables: %w", err)
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tunables{}, fmt.Errorf("data: parse tunables: %w", err)
	}
	return t, nil
}

// Bundle groups every loaded catalog the engine needs at setup time,
// mirroring how game_main.main assembles config + datareader output
// before the frame loop starts.
type Bundle struct {
	Parts     *PartCatalog
	Medals    *MedalCatalog
	Messages  *MessageCatalog
	Tunables  Tunables
}

// LoadBundle loads every catalog from a data directory laid out as
// dir/partcatalog.json, dir/medalcatalog.json, dir/messagecatalog.json,
// dir/tunables.json.
func LoadBundle(dir string) (*Bundle, error) {
	parts, err := LoadPartCatalog(dir + "/partcatalog.json")
	if err != nil {
		return nil, err
	}
	medals, err := LoadMedalCatalog(dir + "/medalcatalog.json")
	if err != nil {
		return nil, err
	}
	messages, err := LoadMessageCatalog(dir + "/messagecatalog.json")
	if err != nil {
		return nil, err
	}
	tunables, err := LoadTunablesWithDefaults(dir + "/tunables.json")
	if err != nil {
		return nil, err
	}
	return &Bundle{Parts: parts, Medals: medals, Messages: messages, Tunables: tunables}, nil
}
