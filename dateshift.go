package transform

import (
	"fmt"
	"math/big"
	"time"

	"github.com/vdparikh/transform/fpe"
	"github.com/vdparikh/transform/subtle"
)

// DefaultDateFormat is the reference layout dates are parsed with when a
// config does not override it (MM/DD/YYYY).
const DefaultDateFormat = "01/02/2006"

// minTweakDigits is the shortest digit string fed to FF1 when deriving the
// day offset.
const minTweakDigits = 6

// defaultDateTweak seeds the offset derivation when no tweak FieldRef is
// configured; every date then shifts by the same key-dependent amount.
const defaultDateTweak = "0123456789"

// DateShiftConfig configures reversible date shifting. The day offset is
// drawn from [LowerRangeDays, UpperRangeDays); Tweak optionally points at a
// field whose value diversifies the offset per record.
type DateShiftConfig struct {
	LowerRangeDays int       `json:"lower_range_days" yaml:"lower_range_days" mapstructure:"lower_range_days"`
	UpperRangeDays int       `json:"upper_range_days" yaml:"upper_range_days" mapstructure:"upper_range_days"`
	Secret         string    `json:"secret" yaml:"secret" mapstructure:"secret"`
	Tweak          *FieldRef `json:"tweak" yaml:"tweak" mapstructure:"tweak"`
	AESMode        string    `json:"aes_mode" yaml:"aes_mode" mapstructure:"aes_mode"`
	DateFormat     string    `json:"date_format" yaml:"date_format" mapstructure:"date_format"`
}

// DateShift moves a parsed date by a deterministic, key-dependent number of
// days and is Restorable by subtracting the same offset. Field mode only:
// dates are whole values, never labeled spans.
type DateShift struct {
	labeled
	cipher *fpe.FPE
	lower  int
	upper  int
	tweak  *FieldRef
	layout string
}

// NewDateShift validates the range and key up front.
func NewDateShift(cfg DateShiftConfig) (*DateShift, error) {
	if cfg.UpperRangeDays <= cfg.LowerRangeDays {
		return nil, fmt.Errorf("date_shift: upper_range_days (%d) must exceed lower_range_days (%d)",
			cfg.UpperRangeDays, cfg.LowerRangeDays)
	}
	mode, err := subtle.ParseMode(cfg.AESMode)
	if err != nil {
		return nil, fmt.Errorf("date_shift: %w", err)
	}
	cipher, err := fpe.New(cfg.Secret, 10, fpe.WithMode(mode))
	if err != nil {
		return nil, fmt.Errorf("date_shift: %w", err)
	}
	layout := cfg.DateFormat
	if layout == "" {
		layout = DefaultDateFormat
	}
	return &DateShift{
		cipher: cipher,
		lower:  cfg.LowerRangeDays,
		upper:  cfg.UpperRangeDays,
		tweak:  cfg.Tweak,
		layout: layout,
	}, nil
}

// Kind implements Transformer.
func (t *DateShift) Kind() Kind { return KindDateShift }

// tweakDigits reduces an arbitrary string to a decimal digit string of at
// least minTweakDigits, byte by byte.
func tweakDigits(s string) []uint16 {
	raw := []byte(s)
	n := len(raw)
	if n < minTweakDigits {
		n = minTweakDigits
	}
	digits := make([]uint16, n)
	pad := n - len(raw)
	for i, b := range raw {
		digits[pad+i] = uint16(b % 10)
	}
	return digits
}

// offsetDays derives the shift for one record: FF1-encrypt the tweak digits
// and fold the resulting numeral into the configured range.
func (t *DateShift) offsetDays(ctx *FieldContext) (int, error) {
	source := defaultDateTweak
	if t.tweak != nil {
		val, err := t.tweak.ResolveOne(ctx.Record)
		if err != nil {
			return 0, fmt.Errorf("date_shift: %w", err)
		}
		source = valueString(val)
	}
	enc, err := t.cipher.EncryptDigits(tweakDigits(source))
	if err != nil {
		return 0, fmt.Errorf("date_shift: %w", err)
	}
	y := new(big.Int)
	for _, d := range enc {
		y.Mul(y, big.NewInt(10))
		y.Add(y, big.NewInt(int64(d)))
	}
	span := big.NewInt(int64(t.upper - t.lower))
	return int(new(big.Int).Mod(y, span).Int64()) + t.lower, nil
}

func (t *DateShift) shift(ctx *FieldContext, value any, direction int) (any, bool, error) {
	parsed, err := time.Parse(t.layout, valueString(value))
	if err != nil {
		// Not a date in the configured layout; best effort, leave it.
		return value, true, nil
	}
	days, err := t.offsetDays(ctx)
	if err != nil {
		return nil, false, err
	}
	return parsed.AddDate(0, 0, direction*days).Format(t.layout), true, nil
}

// TransformField shifts the date forward by the derived offset.
func (t *DateShift) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	return t.shift(ctx, value, 1)
}

// RestoreField shifts the date back by the same offset.
func (t *DateShift) RestoreField(ctx *FieldContext, value any) (any, bool, error) {
	return t.shift(ctx, value, -1)
}

// TransformEntity is unsupported; DateShift never declares entity labels so
// the pipeline cannot route spans here.
func (t *DateShift) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	return nil, "", false, fmt.Errorf("date_shift: entity mode is not supported")
}

// RestoreEntity is unsupported for the same reason as TransformEntity.
func (t *DateShift) RestoreEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	return nil, "", false, fmt.Errorf("date_shift: entity mode is not supported")
}

var (
	_ FieldTransformer = (*DateShift)(nil)
	_ Restorable       = (*DateShift)(nil)
)
