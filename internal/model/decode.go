package model

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Decode converts a generic value (usually a pipeline data bag entry that went
// through JSON) into out, matching fields by their json tag.
func Decode(input any, out any) error {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", out)
	}

	// Values that never left the process keep their concrete type.
	value := reflect.ValueOf(input)
	if value.IsValid() {
		elem := target.Elem()
		if value.Type().AssignableTo(elem.Type()) {
			elem.Set(value)
			return nil
		}
		if value.Kind() == reflect.Pointer && !value.IsNil() && value.Elem().Type().AssignableTo(elem.Type()) {
			elem.Set(value.Elem())
			return nil
		}
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			tierHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func tierHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Tier(0)) || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseTier(data.(string))
}
