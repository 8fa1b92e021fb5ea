package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidVolumePreset = errors.New("model: invalid volume preset")

// LocationReminder attaches a geofence trigger to a task. The geofencing
// machinery itself lives outside this module; only the configuration is
// carried on the record.
type LocationReminder struct {
	Name               string
	Latitude           float64
	Longitude          float64
	Radius             float64
	TriggerOnArrival   bool
	TriggerOnDeparture bool
}

func (r LocationReminder) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("model: location reminder name is required")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("model: location reminder latitude out of range: %v", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("model: location reminder longitude out of range: %v", r.Longitude)
	}
	if r.Radius <= 0 {
		return errors.New("model: location reminder radius must be positive")
	}
	if !r.TriggerOnArrival && !r.TriggerOnDeparture {
		return errors.New("model: location reminder needs at least one trigger")
	}
	return nil
}

type VolumePreset string

const (
	VolumePresetQuiet    VolumePreset = "quiet"
	VolumePresetStandard VolumePreset = "standard"
	VolumePresetLoud     VolumePreset = "loud"
	VolumePresetCustom   VolumePreset = "custom"
)

func (v VolumePreset) IsValid() bool {
	switch v {
	case VolumePresetQuiet, VolumePresetStandard, VolumePresetLoud, VolumePresetCustom:
		return true
	default:
		return false
	}
}

// CriticalAlert configures a break-through-silence alert for a task.
// CustomVolume is only meaningful with VolumePresetCustom and is clamped
// to [0.1, 1.0] at normalization time.
type CriticalAlert struct {
	Enabled      bool
	VolumePreset VolumePreset
	CustomVolume float64
}

const (
	criticalAlertMinVolume = 0.1
	criticalAlertMaxVolume = 1.0
)

// Normalize clamps CustomVolume into its valid range.
func (a CriticalAlert) Normalize() CriticalAlert {
	if a.CustomVolume < criticalAlertMinVolume {
		a.CustomVolume = criticalAlertMinVolume
	}
	if a.CustomVolume > criticalAlertMaxVolume {
		a.CustomVolume = criticalAlertMaxVolume
	}
	return a
}

func (a CriticalAlert) Validate() error {
	if !a.VolumePreset.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidVolumePreset, a.VolumePreset)
	}
	return nil
}
