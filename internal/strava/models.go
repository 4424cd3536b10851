package strava

import "time"

// Activity is a Strava activity summary as returned by the API
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	GearID               string    `json:"gear_id"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"`
	Distance             float64   `json:"distance"`    // meters
	MovingTime           int       `json:"moving_time"` // seconds
	ElapsedTime          int       `json:"elapsed_time"`
	TotalElevationGain   float64   `json:"total_elevation_gain"`
	AverageSpeed         float64   `json:"average_speed"` // m/s
	MaxSpeed             float64   `json:"max_speed"`
	AverageWatts         float64   `json:"average_watts"`
	WeightedAverageWatts float64   `json:"weighted_average_watts"`
	MaxWatts             float64   `json:"max_watts"`
	DeviceWatts          bool      `json:"device_watts"`
	AverageHeartrate     float64   `json:"average_heartrate"`
	MaxHeartrate         float64   `json:"max_heartrate"`
	AverageCadence       float64   `json:"average_cadence"`
	SufferScore          float64   `json:"suffer_score"`
	HasHeartrate         bool      `json:"has_heartrate"`
}

// Athlete is the minimal athlete reference embedded in activity responses
type Athlete struct {
	ID int64 `json:"id"`
}

// DetailedAthlete is the /athlete profile response, including owned gear
type DetailedAthlete struct {
	ID        int64         `json:"id"`
	Firstname string        `json:"firstname"`
	Lastname  string        `json:"lastname"`
	FTP       float64       `json:"ftp"`
	Bikes     []SummaryGear `json:"bikes"`
}

// SummaryGear is a bike as reported on the athlete profile
type SummaryGear struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Distance          float64 `json:"distance"`           // lifetime meters
	ConvertedDistance float64 `json:"converted_distance"` // lifetime km
	Retired           bool    `json:"retired"`
	Primary           bool    `json:"primary"`
}
