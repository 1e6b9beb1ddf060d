package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// The story wire format is map-shaped: characters.json maps character
// name to backstory (a string or a list of lines), and map.json maps
// location name to an evidence name -> description object. Object key
// order is significant (the first location is the starting location
// and character order drives the turn rotation), so both decoders walk
// the JSON token stream instead of unmarshaling into a Go map.

// DecodeCharacters parses a characters.json document, preserving key order.
func DecodeCharacters(data []byte) ([]Character, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: characters: %v", ErrMalformedStory, err)
	}

	var characters []Character
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: characters: %v", ErrMalformedStory, err)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: character %q: %v", ErrMalformedStory, name, err)
		}
		backstory, err := decodeBackstory(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: character %q: %v", ErrMalformedStory, name, err)
		}

		characters = append(characters, Character{Name: name, Backstory: backstory})
	}

	return characters, nil
}

// DecodeLocations parses a map.json document, preserving key order.
func DecodeLocations(data []byte) ([]Location, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: map: %v", ErrMalformedStory, err)
	}

	var locations []Location
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: map: %v", ErrMalformedStory, err)
		}

		evidence := make(map[string]string)
		if err := dec.Decode(&evidence); err != nil {
			return nil, fmt.Errorf("%w: location %q: %v", ErrMalformedStory, name, err)
		}

		locations = append(locations, Location{Name: name, Evidence: evidence})
	}

	return locations, nil
}

// decodeBackstory accepts either a single string or a list of lines.
func decodeBackstory(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("backstory must be a string or a list of strings")
	}
	return strings.Join(lines, "\n"), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
