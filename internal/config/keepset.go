package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bharatcyclehub/bch-admin/internal/model"
	"github.com/spf13/viper"
)

var ErrInvalidKeepSet = errors.New("invalid keep-set")

// LoadKeepSet reads a versioned keep-set file (YAML or JSON, by extension).
//
//	version: 3
//	leads:
//	  - id: lead_1769600475109_fpidkw4ox
//	    note: NEETHA
func LoadKeepSet(path string) (model.KeepSet, error) {
	if strings.TrimSpace(path) == "" {
		return model.KeepSet{}, fmt.Errorf("%w: no keep-set path configured", ErrInvalidKeepSet)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return model.KeepSet{}, fmt.Errorf("read keep-set %s: %w", path, err)
	}

	var ks model.KeepSet
	if err := v.Unmarshal(&ks); err != nil {
		return model.KeepSet{}, fmt.Errorf("decode keep-set %s: %w", path, err)
	}
	if err := ValidateKeepSet(ks); err != nil {
		return model.KeepSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return ks, nil
}

// ValidateKeepSet rejects unversioned sets, blank ids and duplicates.
func ValidateKeepSet(ks model.KeepSet) error {
	if ks.Version <= 0 {
		return fmt.Errorf("%w: version must be > 0", ErrInvalidKeepSet)
	}
	seen := make(map[string]struct{}, len(ks.Leads))
	for i, e := range ks.Leads {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return fmt.Errorf("%w: entry %d has an empty id", ErrInvalidKeepSet, i)
		}
		if id != e.ID {
			return fmt.Errorf("%w: entry %d id %q has surrounding whitespace", ErrInvalidKeepSet, i, e.ID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidKeepSet, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
