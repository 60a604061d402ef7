// ABOUTME: Parameter manager for filter range and accuracy tuning
// ABOUTME: Handles parameter value adjustments with boundary checking

package tui

import (
	"fmt"

	"playlist-explorer/filter"
	"playlist-explorer/playlist"
	"playlist-explorer/recommend"
)

// Parameter represents a tunable value with constraints
type Parameter struct {
	Name     string
	Value    *float64 // Pointer to the range bound being edited
	IntValue *int     // For integer parameters
	Min      float64
	Max      float64
	Step     float64
	IsInt    bool
}

// rangeParams builds a min and a max parameter per feature pointing into ranges,
// followed by the accuracy parameter. Bounds come from the filter's default ranges.
func rangeParams(ranges *[playlist.NumFeatures]filter.Range, spec *filter.Spec, accuracy *int) []Parameter {
	params := make([]Parameter, 0, 2*playlist.NumFeatures+1)

	for f := range playlist.NumFeatures {
		feature := playlist.Feature(f)
		def := spec.DefaultRange(feature)
		step := (def.Max - def.Min) / 100

		params = append(params,
			Parameter{Name: fmt.Sprintf("%s min", feature), Value: &ranges[f].Min, Min: def.Min, Max: def.Max, Step: step},
			Parameter{Name: fmt.Sprintf("%s max", feature), Value: &ranges[f].Max, Min: def.Min, Max: def.Max, Step: step},
		)
	}

	params = append(params, Parameter{
		Name:     "accuracy",
		IntValue: accuracy,
		Min:      1,
		Max:      recommend.MaxAccuracy,
		Step:     1,
		IsInt:    true,
	})

	return params
}

// ParamManager manages parameter selection and adjustments
type ParamManager struct {
	params        []Parameter
	selectedIndex int
}

// NewParamManager creates a new parameter manager
func NewParamManager(params []Parameter) *ParamManager {
	return &ParamManager{
		params:        params,
		selectedIndex: 0,
	}
}

// Selected returns the index of the currently selected parameter
func (pm *ParamManager) Selected() int {
	return pm.selectedIndex
}

// SetSelected sets the selected parameter index
func (pm *ParamManager) SetSelected(index int) {
	if index >= 0 && index < len(pm.params) {
		pm.selectedIndex = index
	}
}

// SelectNext moves selection to the next parameter
func (pm *ParamManager) SelectNext() {
	if pm.selectedIndex < len(pm.params)-1 {
		pm.selectedIndex++
	}
}

// SelectPrevious moves selection to the previous parameter
func (pm *ParamManager) SelectPrevious() {
	if pm.selectedIndex > 0 {
		pm.selectedIndex--
	}
}

// Increase increases the selected parameter value
// Returns true if the value was changed
func (pm *ParamManager) Increase() bool {
	if pm.selectedIndex >= len(pm.params) {
		return false
	}

	param := &pm.params[pm.selectedIndex]
	if param.IsInt {
		newVal := *param.IntValue + int(param.Step)
		if float64(newVal) <= param.Max {
			*param.IntValue = newVal

			return true
		}

		return false
	}

	newVal := *param.Value + param.Step
	// Clamp to max if we're very close (handles floating point precision)
	if newVal > param.Max && newVal <= param.Max+param.Step/1000 {
		newVal = param.Max
	}

	if newVal <= param.Max {
		*param.Value = newVal

		return true
	}

	return false
}

// Decrease decreases the selected parameter value
// Returns true if the value was changed
func (pm *ParamManager) Decrease() bool {
	if pm.selectedIndex >= len(pm.params) {
		return false
	}

	param := &pm.params[pm.selectedIndex]
	if param.IsInt {
		newVal := *param.IntValue - int(param.Step)
		if float64(newVal) >= param.Min {
			*param.IntValue = newVal

			return true
		}

		return false
	}

	newVal := *param.Value - param.Step
	// Clamp to min if we're very close (handles floating point precision)
	if newVal < param.Min && newVal >= param.Min-param.Step/1000 {
		newVal = param.Min
	}

	if newVal >= param.Min {
		*param.Value = newVal

		return true
	}

	return false
}

// Get returns the parameter at the given index
func (pm *ParamManager) Get(index int) *Parameter {
	if index >= 0 && index < len(pm.params) {
		return &pm.params[index]
	}

	return nil
}

// GetSelected returns the currently selected parameter
func (pm *ParamManager) GetSelected() *Parameter {
	return pm.Get(pm.selectedIndex)
}

// Len returns the number of parameters
func (pm *ParamManager) Len() int {
	return len(pm.params)
}

// All returns all parameters (for rendering)
func (pm *ParamManager) All() []Parameter {
	return pm.params
}
