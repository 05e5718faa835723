package model

import "time"

// Plan is a previewed reconciliation: what stays and what would be deleted.
type Plan struct {
	ID             string    `json:"id"`
	KeepSetVersion int       `json:"keep_set_version"`
	CreatedAt      time.Time `json:"created_at"`
	Keep           []Lead    `json:"keep"`
	Remove         []Lead    `json:"remove"`
}

// RemoveIDs lists the ids scheduled for deletion, in plan order.
func (p Plan) RemoveIDs() []string {
	ids := make([]string, 0, len(p.Remove))
	for _, l := range p.Remove {
		ids = append(ids, l.ID)
	}
	return ids
}
