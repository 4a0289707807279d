package astrofit

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _afconfig{}
)

// _afconfig is a "hidden" struct, just use `afConfig`
type _afconfig struct {
	outputDir string
	eopDir    string
}

// afConfig returns the astrofit configuration, loading $AF_CONFIG/conf.toml on
// first use.
func afConfig() _afconfig {
	if cfgLoaded {
		return config
	}
	confPath := os.Getenv("AF_CONFIG")
	if confPath == "" {
		panic("environment variable `AF_CONFIG` is missing or empty")
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}
	config = _afconfig{
		outputDir: viper.GetString("general.output_path"),
		eopDir:    viper.GetString("eop.directory"),
	}
	cfgLoaded = true
	return config
}
