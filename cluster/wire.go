// Package cluster distributes the exact joins behind MPdist over a set of
// HTTP join workers.
//
// A worker is a Server listening on some address. A Client holds the
// addresses of one or more workers and implements matrixprofile.JoinEngine by
// sending each join to the next worker in turn.
package cluster

import (
	"math"

	"github.com/pinkhop/matrixprofile-go"
)

// JSON has no encoding for NaN or infinities. On the wire a missing
// time-series value and an unmatched (+Inf) profile distance are both null.

// JoinRequest is the body of POST /api/v1/join. A null SeriesB requests a
// self-join of SeriesA.
type JoinRequest struct {
	SeriesA       []*float64 `json:"series_a"`
	SeriesB       []*float64 `json:"series_b"`
	M             int        `json:"m"`
	IgnoreTrivial bool       `json:"ignore_trivial"`
}

// JoinResponse is the body of a successful join.
type JoinResponse struct {
	Distances []*float64 `json:"distances"`
	Indices   []int      `json:"indices"`
}

// encodeValues converts values to their wire form, mapping every non-finite
// value to null.
func encodeValues(values []float64) []*float64 {
	if values == nil {
		return nil
	}
	out := make([]*float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = &values[i]
	}
	return out
}

// decodeValues converts values from their wire form, replacing null with
// missing.
func decodeValues(values []*float64, missing float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = missing
			continue
		}
		out[i] = *v
	}
	return out
}

func newJoinRequest(seriesA []float64, m int, seriesB []float64, ignoreTrivial bool) JoinRequest {
	return JoinRequest{
		SeriesA:       encodeValues(seriesA),
		SeriesB:       encodeValues(seriesB),
		M:             m,
		IgnoreTrivial: ignoreTrivial,
	}
}

func newJoinResponse(profile *matrixprofile.Profile) JoinResponse {
	return JoinResponse{
		Distances: encodeValues(profile.Distances),
		Indices:   profile.Indices,
	}
}

func (r JoinResponse) profile() *matrixprofile.Profile {
	return &matrixprofile.Profile{
		Distances: decodeValues(r.Distances, math.Inf(1)),
		Indices:   r.Indices,
	}
}
