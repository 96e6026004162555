package cluster

import (
	"context"

	"github.com/pinkhop/matrixprofile-go"
)

// MPdist computes the matrix profile distance between seriesA and seriesB
// with the AB-join and BA-join sent to the client's workers. It accepts the
// same options as matrixprofile.MPdist and returns the same value.
func MPdist(
	ctx context.Context,
	client *Client,
	seriesA,
	seriesB []float64,
	m int,
	opts ...matrixprofile.MPdistOption,
) (float64, error) {
	return matrixprofile.MPdistWith(ctx, client, seriesA, seriesB, m, opts...)
}
