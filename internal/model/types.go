package model

// Departure is one historical train departure joined with the coordinates
// of both endpoint stations. Immutable once loaded.
type Departure struct {
	TrainID     string
	Origin      string
	Destination string
	Hour        int
	DelayMin    float64
	OriginLat   float64
	OriginLong  float64
	DestLat     float64
	DestLong    float64
}

// Station is reference data: a station code with its coordinates.
type Station struct {
	Code string
	Lat  float64
	Long float64
}

// RouteStats aggregates historical delay for one route.
type RouteStats struct {
	AvgDelay float64 `json:"avg_delay"`
	StdDelay float64 `json:"std_delay"`
	Count    int     `json:"count"`
}

// Metrics holds the standard regression error metrics on the held-out set.
type Metrics struct {
	RMSE float64 `yaml:"rmse" json:"rmse"`
	MAE  float64 `yaml:"mae" json:"mae"`
	R2   float64 `yaml:"r2" json:"r2"`
}
