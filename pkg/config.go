package qvectors

type Configuration struct {
	MaxEvents        int      `json:"max_events" validate:"gte=0"`
	Skip             int      `json:"skip" validate:"gte=0"`
	Verbosity        int      `json:"verbosity" validate:"gte=0"`
	FileIn           string   `json:"file_in" validate:"required"`
	FileOut          string   `json:"file_out" validate:"required_if=WriteData true"`
	MetricsFile      string   `json:"metrics_file"`
	Conditions       string   `json:"conditions" validate:"required"`
	Host             string   `json:"host"`
	User             string   `json:"user"`
	Passwd           string   `json:"pass" envconfig:"PASS"`
	DBName           string   `json:"dbname"`
	NumWorkers       int      `json:"num_workers" validate:"gte=1"`
	CentEstimator    int      `json:"cent_estimator" validate:"gte=0,lte=3"`
	Harmonics        []int    `json:"harmonics" validate:"required,min=1,dive,gte=1"`
	MinPt            float32  `json:"min_pt" validate:"gte=0"`
	MaxPt            float32  `json:"max_pt" validate:"gtfield=MinPt"`
	Subsystems       []string `json:"subsystems" validate:"dive,oneof=FT0C FT0A FT0M FV0A BPos BNeg"`
	CompressionLevel int      `json:"compression_level" validate:"gte=0,lte=9"`
	WriteData        bool     `json:"write_data"`
}

var configuration = DefaultConfiguration()

// DefaultConfiguration returns the settings used when a key is absent from
// the configuration file.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxEvents:        1000000000,
		Skip:             0,
		Verbosity:        0,
		Conditions:       "db",
		Host:             "alice-ccdb.cern.ch",
		User:             "qvecreader",
		Passwd:           "readonly",
		DBName:           "QVECTORS",
		NumWorkers:       1,
		CentEstimator:    int(CentFT0C),
		Harmonics:        []int{2, 3},
		MinPt:            0.15,
		MaxPt:            5,
		Subsystems:       []string{"FT0C", "FT0A", "FT0M", "FV0A", "BPos", "BNeg"},
		CompressionLevel: 4,
		WriteData:        true,
	}
}

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}
