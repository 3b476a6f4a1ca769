package netcdf

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// featureIDs reads the feature_id array. CHRTOUT files have stored it as
// int32 or int64 depending on archive version; both are widened to int64.
func featureIDs(nc api.Group) ([]int64, error) {
	vr, err := nc.GetVariable(featureVarName)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", featureVarName, err)
	}

	switch v := vr.Values.(type) {
	case []int64:
		return v, nil
	case []int32:
		ids := make([]int64, len(v))
		for i, id := range v {
			ids[i] = int64(id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("variable %q: unsupported type %T", featureVarName, vr.Values)
	}
}

// flowValues reads the streamflow array. Integer-packed variants carry a
// scale_factor attribute (retrospective v2.x stores hundredths of m³/s as
// int32); float variants are used as-is.
func flowValues(nc api.Group) ([]float64, error) {
	vr, err := nc.GetVariable(flowVarName)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", flowVarName, err)
	}

	switch v := vr.Values.(type) {
	case []float64:
		return v, nil
	case []float32:
		flows := make([]float64, len(v))
		for i, f := range v {
			flows[i] = float64(f)
		}
		return flows, nil
	case []int32:
		scale := scaleFactor(vr)
		flows := make([]float64, len(v))
		for i, f := range v {
			flows[i] = float64(f) * scale
		}
		return flows, nil
	default:
		return nil, fmt.Errorf("variable %q: unsupported type %T", flowVarName, vr.Values)
	}
}

// scaleFactor reads the variable's scale_factor attribute, defaulting to 1.
func scaleFactor(vr *api.Variable) float64 {
	if vr.Attributes == nil {
		return 1
	}
	raw, ok := vr.Attributes.Get("scale_factor")
	if !ok {
		return 1
	}
	switch s := raw.(type) {
	case float64:
		return s
	case float32:
		return float64(s)
	case []float64:
		if len(s) == 1 {
			return s[0]
		}
	case []float32:
		if len(s) == 1 {
			return float64(s[0])
		}
	}
	return 1
}
