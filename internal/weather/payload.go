package weather

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Fields converted from Celsius, each stored under "<field>_f".
var celsiusFields = []string{"temp", "feels_like", "temp_min", "temp_max"}

// decodePayload parses the weather body as a JSON object, keeping numbers as
// json.Number so untouched fields round-trip unchanged.
func decodePayload(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode weather payload: trailing data after JSON object")
	}
	if payload == nil {
		return nil, errors.New("decode weather payload: not a JSON object")
	}
	return payload, nil
}

// augment adds Fahrenheit temperatures and clothing suggestions when the
// payload carries a "main" section. Without one the payload is left as is.
func augment(payload Payload) error {
	raw, ok := payload["main"]
	if !ok {
		return nil
	}
	main, ok := raw.(map[string]any)
	if !ok {
		return errors.New("main section is not an object")
	}

	converted := make(map[string]float64, len(celsiusFields))
	for _, field := range celsiusFields {
		v, ok := main[field]
		if !ok {
			return fmt.Errorf("missing main.%s", field)
		}
		c, ok := number(v)
		if !ok {
			return fmt.Errorf("main.%s is not a number", field)
		}
		converted[field+"_f"] = CelsiusToFahrenheit(c)
	}

	for k, v := range converted {
		main[k] = v
	}
	payload["clothing_suggestions"] = SuggestClothing(converted["temp_f"])
	return nil
}

// HistoryFromResult extracts a history record from a successful lookup.
// It reports false for error results and payloads without a "main" section.
func HistoryFromResult(city string, res Result, now time.Time) (HistoryRecord, bool) {
	if !res.OK() {
		return HistoryRecord{}, false
	}
	main, ok := res.Weather["main"].(map[string]any)
	if !ok {
		return HistoryRecord{}, false
	}

	rec := HistoryRecord{
		City:      city,
		Timestamp: now.UTC(),
	}
	rec.Temperature, _ = number(main["temp"])
	rec.Humidity, _ = number(main["humidity"])
	if wind, ok := res.Weather["wind"].(map[string]any); ok {
		rec.WindSpeed, _ = number(wind["speed"])
	}
	if clouds, ok := res.Weather["clouds"].(map[string]any); ok {
		rec.CloudCover, _ = number(clouds["all"])
	}
	return rec, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
