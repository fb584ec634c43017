package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyWeatherObservation is the classified weather for one location and date.
type DailyWeatherObservation struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	LocationID      uuid.UUID `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_weather_observations_day,priority:1"`
	ObservedDate    time.Time `gorm:"column:observed_date;type:date;not null;uniqueIndex:ux_weather_observations_day,priority:2"`
	TempHighF       *float64  `gorm:"column:temp_high_f"`
	TempLowF        *float64  `gorm:"column:temp_low_f"`
	PrecipitationIn float64   `gorm:"column:precipitation_in;not null;default:0"`
	WindGustMPH     *float64  `gorm:"column:wind_gust_mph"`
	WeatherCode     *int      `gorm:"column:weather_code"`
	Description     string    `gorm:"column:description;not null;default:''"`
	IsRainy         bool      `gorm:"column:is_rainy;not null;default:false"`
	IsExtremeHeat   bool      `gorm:"column:is_extreme_heat;not null;default:false"`
	IsExtremeCold   bool      `gorm:"column:is_extreme_cold;not null;default:false"`
	IsSevere        bool      `gorm:"column:is_severe;not null;default:false"`
	Source          string    `gorm:"column:source;not null;default:'open-meteo'"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *DailyWeatherObservation) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
