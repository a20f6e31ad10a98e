package montecarlo

import (
	"errors"

	"github.com/nao1215/ndsphere/internal/volume"
)

// ErrInvalidArgument is returned when the dimension, sample count or radius is
// out of range. It is the same sentinel as volume.ErrInvalidArgument.
var ErrInvalidArgument = volume.ErrInvalidArgument

// ErrNilSource is returned when no random source is supplied.
var ErrNilSource = errors.New("random source is nil")
