package emitter

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

var ErrInvalidOptions = errors.New("emitter: invalid options")

// DecodeOptions decodes opts into out, which must be a pointer to a struct
// with mapstructure tags. Unknown keys are rejected and strings such as
// "5m" decode into time.Duration fields.
func DecodeOptions(opts map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}
