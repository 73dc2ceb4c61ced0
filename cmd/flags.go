package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flag names to the configuration keys they
// override.
var flagKeys = map[string]string{
	"content":     "content.root",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"host":        "server.host",
	"port":        "server.port",
	"environment": "server.environment",
	"assets":      "assets.dir",
	"title":       "site.title",
	"live-reload": "development.live_reload",
}

// bindFlags binds every flag of fs that has a configuration key to v. Each
// key must be bound from exactly one flag set, or the later binding wins.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(flag *pflag.Flag) {
		key, ok := flagKeys[flag.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flag); err != nil {
			bindErr = fmt.Errorf("binding --%s to %s: %w", flag.Name, key, err)
		}
	})
	return bindErr
}
