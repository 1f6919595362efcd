package models

// VolumeUpdate is the PATCH body for setting the volume. Exactly one of Step
// or Delta must be set.
type VolumeUpdate struct {
	Step  *uint8 `json:"step,omitempty"`
	Delta *int   `json:"delta,omitempty"`
}

// InputUpdate is the PATCH body for updating an input's configuration.
type InputUpdate struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
	MaxVol *uint8  `json:"max_vol,omitempty"`
	MinVol *uint8  `json:"min_vol,omitempty"`
}

// TriggerUpdate is the PATCH body for updating a trigger's configuration.
type TriggerUpdate struct {
	Active    *bool  `json:"active,omitempty"`
	Latching  *bool  `json:"latching,omitempty"`
	Smart     *bool  `json:"smart,omitempty"`
	OnDelay   *uint8 `json:"on_delay,omitempty"`
	TempLimit *uint8 `json:"temp_limit,omitempty"`
}

// SettingsUpdate is the PATCH body for the global settings knobs. Changing
// VolumeSteps revalidates every dependent bound, exactly like the on-device
// menu edit.
type SettingsUpdate struct {
	VolumeSteps       *uint8 `json:"volume_steps,omitempty"`
	MinAttenuation    *uint8 `json:"min_attenuation,omitempty"`
	MaxAttenuation    *uint8 `json:"max_attenuation,omitempty"`
	MaxStartVolume    *uint8 `json:"max_start_volume,omitempty"`
	MuteLevel         *uint8 `json:"mute_level,omitempty"`
	RecallSetLevel    *bool  `json:"recall_set_level,omitempty"`
	InactivityTimeout *uint8 `json:"inactivity_timeout,omitempty"`
}

// DisplayUpdate is the PATCH body for the display policy.
type DisplayUpdate struct {
	ScreenSaver *bool  `json:"screen_saver,omitempty"`
	OnLevel     *uint8 `json:"on_level,omitempty"`
	DimLevel    *uint8 `json:"dim_level,omitempty"`
	Timeout     *uint8 `json:"timeout,omitempty"`
	VolumeMode  *uint8 `json:"volume_mode,omitempty"`
	ShowInput   *bool  `json:"show_input,omitempty"`
	Temp1Mode   *uint8 `json:"temp1_mode,omitempty"`
	Temp2Mode   *uint8 `json:"temp2_mode,omitempty"`
}
