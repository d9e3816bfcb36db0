package inference

import (
	"facetrust/internal/jsonutil"
)

// Degenerate results carry NaN fields, which encoding/json refuses, so
// every result type marshals through the NaN-safe path.

func (r PairedComparisonResult) MarshalJSON() ([]byte, error) {
	type plain PairedComparisonResult
	return jsonutil.Marshal(plain(r))
}

func (r RMANOVAResult) MarshalJSON() ([]byte, error) {
	type plain RMANOVAResult
	return jsonutil.Marshal(plain(r))
}

func (r ICCResult) MarshalJSON() ([]byte, error) {
	type plain ICCResult
	return jsonutil.Marshal(plain(r))
}

func (r SplitHalfResult) MarshalJSON() ([]byte, error) {
	type plain SplitHalfResult
	return jsonutil.Marshal(plain(r))
}
