package models

import (
	"time"

	domain "energymon/internal/models"
)

type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type CreateDeviceRequest struct {
	Name             string  `json:"name" binding:"required"`
	Location         *string `json:"location"`
	Model            *string `json:"model"`
	Manufacturer     *string `json:"manufacturer"`
	SerialNumber     *string `json:"serial_number"`
	ExternalDeviceID *string `json:"external_device_id"`
	Timezone         *string `json:"timezone"`
}

type ReadingRequest struct {
	TS       *time.Time `json:"ts"`
	PowerW   *float64   `json:"power_w"`
	VoltageV *float64   `json:"voltage_v"`
	CurrentA *float64   `json:"current_a"`
	EnergyWh *float64   `json:"energy_wh"`
}

type CreateAlertRequest struct {
	Name            string             `json:"name" binding:"required"`
	Kind            domain.AlertKind   `json:"alert_type" binding:"required"`
	DeviceID        *string            `json:"device_id"`
	Metric          *string            `json:"metric"`
	Comparison      *domain.Comparison `json:"comparison"`
	Threshold       *float64           `json:"threshold"`
	WindowSeconds   *int               `json:"window_seconds"`
	Severity        *domain.Severity   `json:"severity"`
	IsEnabled       *bool              `json:"is_enabled"`
	CooldownSeconds *int               `json:"cooldown_seconds"`
}
