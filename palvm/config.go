package palvm

import (
	"errors"
	"fmt"
	"math"

	"github.com/reusee/palforth/stacks"
)

var ErrBadConfig = errors.New("bad config")

type Config struct {
	ParamSlots  int // parameter stack capacity in words
	DataSlots   int // data stack capacity in words
	ReturnDepth int // nesting bound of Run
	IntBytes    int // width of the machine integer: 1, 2, 4 or 8

	UncheckedOverflow  bool
	UncheckedUnderflow bool
	Trace              bool

	ScratchLimit int // bytes, 0 for no limit
}

func DefaultConfig() Config {
	return Config{
		ParamSlots:  256,
		DataSlots:   1024,
		ReturnDepth: 256,
		IntBytes:    stacks.WordSize,
	}
}

const maxSlots = math.MaxUint32 / stacks.WordSize

func (c Config) Validate() error {
	if c.ParamSlots <= 0 || c.ParamSlots > maxSlots {
		return fmt.Errorf("%w: param slots %d", ErrBadConfig, c.ParamSlots)
	}
	if c.DataSlots <= 0 || c.DataSlots > maxSlots {
		return fmt.Errorf("%w: data slots %d", ErrBadConfig, c.DataSlots)
	}
	if c.ReturnDepth <= 0 {
		return fmt.Errorf("%w: return depth %d", ErrBadConfig, c.ReturnDepth)
	}
	switch c.IntBytes {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: int bytes %d", ErrBadConfig, c.IntBytes)
	}
	if c.ScratchLimit < 0 {
		return fmt.Errorf("%w: scratch limit %d", ErrBadConfig, c.ScratchLimit)
	}
	return nil
}
