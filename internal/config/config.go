package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Raster  RasterConfig  `yaml:"raster" mapstructure:"raster"`
	Legend  LegendConfig  `yaml:"legend" mapstructure:"legend"`
	Buffer  BufferConfig  `yaml:"buffer" mapstructure:"buffer"`
	CRS     CRSConfig     `yaml:"crs" mapstructure:"crs"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RasterConfig configures annual land-cover raster discovery.
type RasterConfig struct {
	// Dir is scanned for one ESRI ASCII grid per calendar year.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Pattern is a filename glob; the first run of four digits in each
	// matching name is taken as the raster's calendar year.
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	// NoData applies when a file omits the NODATA_value header.
	NoData int32 `yaml:"nodata" mapstructure:"nodata"`
}

// LegendConfig configures land-cover reclassification.
type LegendConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	// DefaultTarget is assigned to codes absent from the legend table.
	DefaultTarget int32 `yaml:"default_target" mapstructure:"default_target"`
}

// BufferConfig configures buffer polygon generation.
type BufferConfig struct {
	// RadiiMeters are processed largest-first.
	RadiiMeters []float64 `yaml:"radii_meters" mapstructure:"radii_meters"`
	// Segments is the number of vertices approximating each circle.
	Segments int `yaml:"segments" mapstructure:"segments"`
}

// CRSConfig parameterizes the equal-area projection (spherical Albers).
type CRSConfig struct {
	CentralMeridian float64 `yaml:"central_meridian" mapstructure:"central_meridian"`
	LatitudeOrigin  float64 `yaml:"latitude_origin" mapstructure:"latitude_origin"`
	StdParallel1    float64 `yaml:"std_parallel_1" mapstructure:"std_parallel_1"`
	StdParallel2    float64 `yaml:"std_parallel_2" mapstructure:"std_parallel_2"`
	// CellSizeMeters is the resolution of reprojected grids.
	CellSizeMeters float64 `yaml:"cell_size_meters" mapstructure:"cell_size_meters"`
}

// MetricsConfig selects which metrics the engine computes.
type MetricsConfig struct {
	Names []string `yaml:"names" mapstructure:"names"`
}

// BatchConfig configures parallel site processing.
type BatchConfig struct {
	MaxConcurrentSites int `yaml:"max_concurrent_sites" mapstructure:"max_concurrent_sites"`
	SiteTimeoutSecs    int `yaml:"site_timeout_secs" mapstructure:"site_timeout_secs"`
}

// OutputConfig configures result serialization.
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LANDSCAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "landscape.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("raster.pattern", "*.asc")
	v.SetDefault("raster.nodata", -9999)
	v.SetDefault("legend.default_target", 0)
	v.SetDefault("buffer.radii_meters", []float64{500, 1000, 2000, 4000, 8000})
	v.SetDefault("buffer.segments", 64)
	v.SetDefault("crs.central_meridian", -60)
	v.SetDefault("crs.latitude_origin", -32)
	v.SetDefault("crs.std_parallel_1", -5)
	v.SetDefault("crs.std_parallel_2", -42)
	v.SetDefault("crs.cell_size_meters", 30)
	v.SetDefault("metrics.names", []string{"pland", "patch_count", "edge_density"})
	v.SetDefault("batch.max_concurrent_sites", 4)
	v.SetDefault("batch.site_timeout_secs", 300)
	v.SetDefault("output.path", "landscape-metrics.csv")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
