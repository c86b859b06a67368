package storage

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding blob of %d bytes is not a float32 array", ErrCorruptIndex, len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector, nil
}

// EncodeVector returns the base64 form stored in index records
func EncodeVector(vector []float32) string {
	return base64.StdEncoding.EncodeToString(serializeVector(vector))
}

// DecodeVector parses the base64 form stored in index records
func DecodeVector(encoded string) ([]float32, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	return deserializeVector(blob)
}

// L2Norm returns the Euclidean length of v
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity computes dot(a, b) / (aNorm * bNorm) over the shorter of
// the two vectors, using precomputed norms. A zero denominator yields 0.
func CosineSimilarity(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	denom := aNorm * bNorm
	if denom == 0 {
		return 0
	}
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / denom
}
