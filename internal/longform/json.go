package longform

import (
	"facetrust/internal/jsonutil"
)

func (r ViewEffectsResult) MarshalJSON() ([]byte, error) {
	type plain ViewEffectsResult
	return jsonutil.Marshal(plain(r))
}

func (r RegressionResult) MarshalJSON() ([]byte, error) {
	type plain RegressionResult
	return jsonutil.Marshal(plain(r))
}
