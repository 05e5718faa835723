package model

// KeepEntry is one hand-verified genuine customer lead.
type KeepEntry struct {
	ID   string `mapstructure:"id"   json:"id"`
	Note string `mapstructure:"note" json:"note,omitempty"`
}

// KeepSet is the versioned allow-list of lead ids exempt from reconciliation.
type KeepSet struct {
	Version int         `mapstructure:"version" json:"version"`
	Leads   []KeepEntry `mapstructure:"leads"   json:"leads"`
}

func NewKeepSet(version int, ids ...string) KeepSet {
	ks := KeepSet{Version: version}
	for _, id := range ids {
		ks.Leads = append(ks.Leads, KeepEntry{ID: id})
	}
	return ks
}

// IDs returns the keep-set as a lookup set.
func (k KeepSet) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(k.Leads))
	for _, e := range k.Leads {
		ids[e.ID] = struct{}{}
	}
	return ids
}

func (k KeepSet) Len() int { return len(k.Leads) }
