package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Common errors
var (
	ErrDimMismatch  = errors.New("vector: dimension mismatch")
	ErrSizeMismatch = errors.New("vector: blob size mismatch")
	ErrZeroVector   = errors.New("vector: cannot normalize zero vector")
)

// Codec validates and (de)serializes fixed-dimension float32 vectors.
// Every vector that enters a cache or the similarity computation goes
// through a Codec, so dimension errors surface at the boundary instead
// of as silent index drift later.
type Codec struct {
	dim int
}

// NewCodec creates a codec for vectors of the given dimension.
func NewCodec(dim int) *Codec {
	return &Codec{dim: dim}
}

// Dim returns the expected vector dimension.
func (c *Codec) Dim() int { return c.dim }

// Validate checks that v has exactly the configured dimension.
func (c *Codec) Validate(v []float32) error {
	if len(v) != c.dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimMismatch, c.dim, len(v))
	}
	return nil
}

// Normalize returns a unit vector in the same direction as v.
// The zero vector has no direction and is rejected.
func (c *Codec) Normalize(v []float32) ([]float32, error) {
	if err := c.Validate(v); err != nil {
		return nil, err
	}
	norm := Norm(v)
	if norm == 0 {
		return nil, ErrZeroVector
	}
	result := make([]float32, len(v))
	for i := range v {
		result[i] = v[i] / norm
	}
	return result, nil
}

// Serialize packs v as dim consecutive little-endian float32 values,
// no header. The blob length is always 4*dim.
func (c *Codec) Serialize(v []float32) ([]byte, error) {
	if err := c.Validate(v); err != nil {
		return nil, err
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf, nil
}

// Deserialize unpacks a blob produced by Serialize. A blob of any other
// length is corrupt, not a vector of a different dimension.
func (c *Codec) Deserialize(b []byte) ([]float32, error) {
	if len(b) != c.dim*4 {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrSizeMismatch, c.dim*4, len(b))
	}
	v := make([]float32, c.dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// Dot computes the dot product of two vectors. For unit vectors this is
// their cosine similarity.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm computes the L2 norm (magnitude) of a vector.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}
