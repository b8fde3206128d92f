package pkgconfig

import (
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Viper backs the Config interface with github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the configuration file at pathFile and returns a
// Viper-backed Config. The file format is taken from the extension, and the
// file is watched so edits apply to later reads without a restart.
//
// Environment variables prefixed GOSALES_ override file values; dots in keys
// become underscores, so GOSALES_SERVER_ADDRESS_HTTP overrides
// "server.address.http".
func NewViper(pathFile string) (*Viper, error) {
	base := path.Base(pathFile)

	v := viper.New()
	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(base, path.Ext(base)))

	v.SetEnvPrefix("GOSALES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.WatchConfig()

	return &Viper{v: v}, nil
}

// GetString returns the value for key as a string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetInt returns the value for key as an int64.
func (vc *Viper) GetInt(key string) int64 {
	return vc.v.GetInt64(key)
}

// GetBool returns the value for key as a bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetFloat returns the value for key as a float64.
func (vc *Viper) GetFloat(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetDuration parses the value for key with time.ParseDuration.
func (vc *Viper) GetDuration(key string) time.Duration {
	return vc.v.GetDuration(key)
}

// GetArray returns the comma-separated value for key as a slice. An unset
// key yields nil rather than a one-element slice of "".
func (vc *Viper) GetArray(key string) []string {
	raw := vc.v.GetString(key)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}

// Close satisfies Config. Viper holds no resources that need releasing.
func (vc *Viper) Close() error {
	return nil
}
