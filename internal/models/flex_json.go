package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// gameStatFieldMap caches JSON tag -> struct field index mappings
var (
	gameStatFieldMap     map[string]int
	gameStatFieldMapOnce sync.Once
)

func getGameStatFieldMap() map[string]int {
	gameStatFieldMapOnce.Do(func() {
		gameStatFieldMap = jsonFieldMap(reflect.TypeOf(GameStat{}))
	})
	return gameStatFieldMap
}

func jsonFieldMap(t reflect.Type) map[string]int {
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		fields[name] = i
	}
	return fields
}

// UnmarshalJSON accepts both native and string-encoded numbers. The ranked
// API serializes decimal columns (elo in particular) as quoted strings on some
// deployments and whole-number floats ("12.0") on others.
func (g *GameStat) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias GameStat
	a := (*Alias)(g)

	// Fast path: try standard unmarshal (works when all types match natively)
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getGameStatFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		s := string(rawVal)
		if len(rawVal) > 1 && rawVal[0] == '"' {
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
		}
		if s == "" || s == "null" {
			continue
		}
		coerceStringToField(fv, strings.TrimSpace(s))
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "28.0" → truncate to int
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetInt(int64(n))
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			fv.SetBool(b)
		}
	case reflect.String:
		fv.SetString(s)
	}
}
